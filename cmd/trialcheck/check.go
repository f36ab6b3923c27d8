package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/copyleftdev/trialcore/internal/codec"
	"github.com/copyleftdev/trialcore/internal/config"
	"github.com/copyleftdev/trialcore/internal/errors"
	"github.com/copyleftdev/trialcore/internal/logging"
	"github.com/copyleftdev/trialcore/internal/metrics"
	"github.com/copyleftdev/trialcore/internal/trial"
)

// checker loads trial documents, reports on them and optionally completes and
// rewrites them.
type checker struct {
	cfg       *config.Config
	logger    *logging.Logger
	reporter  *metrics.CountingReporter
	collector *metrics.Collector
	registry  *prometheus.Registry
}

func newChecker(cfg *config.Config, logger *logging.Logger) (*checker, error) {
	registry := prometheus.NewRegistry()

	zl := logging.NewZapLogger(logger, zap.AddCaller())
	reporter, err := metrics.NewCountingReporter(logging.NewZapReporter(zl), registry)
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector()
	if err := registry.Register(collector); err != nil {
		return nil, err
	}

	return &checker{
		cfg:       cfg,
		logger:    logger,
		reporter:  reporter,
		collector: collector,
		registry:  registry,
	}, nil
}

func (c *checker) formatFor(path string) (codec.Format, error) {
	if c.cfg.Check.Format == "" || c.cfg.Check.Format == "auto" {
		return codec.FormatFromPath(path)
	}
	return codec.ParseFormat(c.cfg.Check.Format)
}

// run checks every file and writes the configured output. It stops at the
// first file that cannot be loaded.
func (c *checker) run(paths []string) error {
	var all []*trial.Trial
	for _, path := range paths {
		trials, err := c.checkFile(path)
		if err != nil {
			return err
		}
		all = append(all, trials...)
	}

	if c.cfg.Check.Output != "" {
		if err := c.writeOutput(c.cfg.Check.Output, all); err != nil {
			return err
		}
	}

	if c.cfg.Check.Metrics {
		return c.logMetrics()
	}
	return nil
}

func (c *checker) checkFile(path string) ([]*trial.Trial, error) {
	const op = "checkFile"
	log := c.logger.WithField("file", path)

	format, err := c.formatFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path).WithOperation(op)
	}
	defer f.Close()

	docs, err := codec.Decode(f, format)
	if err != nil {
		return nil, err
	}
	log.Debug("Decoded trial documents", map[string]interface{}{"count": len(docs)})

	trials := make([]*trial.Trial, 0, len(docs))
	for _, doc := range docs {
		t, err := doc.ToTrial(trial.WithReporter(c.reporter))
		if err != nil {
			return nil, err
		}

		// IsCompleted reports inconsistent records, so it runs once per trial.
		completed := t.IsCompleted()
		if c.cfg.Check.CompleteOpen && !completed {
			m, err := trial.NewMeasurement()
			if err != nil {
				return nil, err
			}
			t.Complete(m, true)
			completed = true
			log.Info("Completed open trial", map[string]interface{}{"trial_id": t.ID()})
		}

		c.collector.Observe(t)
		log.Info("Trial", trialFields(t, completed))
		trials = append(trials, t)
	}
	return trials, nil
}

func trialFields(t *trial.Trial, completed bool) map[string]interface{} {
	fields := map[string]interface{}{
		"trial_id":     t.ID(),
		"status":       t.Status().String(),
		"is_completed": completed,
		"infeasible":   t.Infeasible(),
		"parameters":   t.Parameters().Len(),
		"measurements": len(t.Measurements()),
	}
	if d, ok := t.Duration(); ok {
		fields["duration_secs"] = d.Seconds()
	}
	if reason, ok := t.InfeasibilityReason(); ok {
		fields["infeasibility_reason"] = reason
	}
	return fields
}

func (c *checker) writeOutput(path string, trials []*trial.Trial) error {
	const op = "writeOutput"

	format, err := c.formatFor(path)
	if err != nil {
		return err
	}

	docs := make([]*codec.TrialDocument, 0, len(trials))
	for _, t := range trials {
		docs = append(docs, codec.FromTrial(t))
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path).WithOperation(op)
	}
	if err := codec.Encode(f, format, docs...); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path).WithOperation(op)
	}

	c.logger.Info("Wrote trials", map[string]interface{}{"file": path, "count": len(docs)})
	return nil
}

// logMetrics logs every gathered sample at info level.
func (c *checker) logMetrics() error {
	families, err := c.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := map[string]interface{}{"metric": mf.GetName()}
			for _, lp := range m.GetLabel() {
				fields[lp.GetName()] = lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				fields["value"] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				fields["value"] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				fields["count"] = m.GetHistogram().GetSampleCount()
				fields["sum"] = m.GetHistogram().GetSampleSum()
			}
			c.logger.Info("Metric", fields)
		}
	}
	return nil
}
