package advisor

// Collector accumulates findings of one analysis run into per-severity
// buckets. Order within a bucket is the order findings were recorded.
type Collector struct {
	infos    []Finding
	warnings []Finding
	errors   []Finding
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends f to the bucket matching its severity. Findings with an
// unknown severity are treated as errors.
func (c *Collector) Record(f Finding) {
	switch f.Severity {
	case SeverityInfo:
		c.infos = append(c.infos, f)
	case SeverityWarning:
		c.warnings = append(c.warnings, f)
	default:
		c.errors = append(c.errors, f)
	}
}

// Infos returns the informational findings.
func (c *Collector) Infos() []Finding { return c.infos }

// Warnings returns the warning findings.
func (c *Collector) Warnings() []Finding { return c.warnings }

// Errors returns the error findings.
func (c *Collector) Errors() []Finding { return c.errors }

// All returns every finding, errors first, then warnings, then infos.
func (c *Collector) All() []Finding {
	out := make([]Finding, 0, len(c.errors)+len(c.warnings)+len(c.infos))
	out = append(out, c.errors...)
	out = append(out, c.warnings...)
	out = append(out, c.infos...)
	return out
}

// Outcome is Fail if any error finding was recorded.
func (c *Collector) Outcome() Outcome {
	if len(c.errors) > 0 {
		return OutcomeFail
	}
	return OutcomePass
}
