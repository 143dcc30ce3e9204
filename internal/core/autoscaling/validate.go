package autoscaling

import (
	"fmt"
	"regexp"
)

// =============================================================================
// Policy Validation
// =============================================================================

// PolicyError reports a validation failure with the offending field. It is
// never fatal to a deployment; callers log it and carry on.
type PolicyError struct {
	Field   string
	Message string
}

func (e *PolicyError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("autoscaling policy: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("autoscaling policy: %s", e.Message)
}

var (
	// Standard SQS queue URL: region, 12-digit account, queue name with an
	// optional .fifo suffix.
	queueURLPattern = regexp.MustCompile(`^https://sqs\.[a-z0-9-]+\.amazonaws\.com/[0-9]{12}/[a-zA-Z0-9_-]+(\.fifo)?$`)

	// Zero-padded 24h clock. "9:00" is rejected, "09:00" is not.
	clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

var validDays = map[string]bool{
	"mon": true, "tue": true, "wed": true, "thu": true,
	"fri": true, "sat": true, "sun": true,
}

// Validate checks a decoded policy against the schema rules. Returns a
// *PolicyError describing the first violation found, or nil.
func Validate(p *Policy) error {
	if p.Min() < 0 {
		return &PolicyError{Field: "min_tasks", Message: fmt.Sprintf("must be >= 0, got %d", p.Min())}
	}
	if p.Max() < 1 {
		return &PolicyError{Field: "max_tasks", Message: fmt.Sprintf("must be >= 1, got %d", p.Max())}
	}
	if p.Max() < p.Min() {
		return &PolicyError{
			Field:   "max_tasks",
			Message: fmt.Sprintf("max_tasks (%d) must be >= min_tasks (%d)", p.Max(), p.Min()),
		}
	}

	if p.Provider == nil {
		return &PolicyError{Field: "provider", Message: "provider block is required"}
	}
	if err := validateProvider(p.Provider); err != nil {
		return err
	}

	if p.ScaleOutCooldown != nil && *p.ScaleOutCooldown < 0 {
		return &PolicyError{Field: "scale_out_cooldown", Message: "must be >= 0 seconds"}
	}
	if p.ScaleInCooldown != nil && *p.ScaleInCooldown < 0 {
		return &PolicyError{Field: "scale_in_cooldown", Message: "must be >= 0 seconds"}
	}

	if g := p.ScaleInGuard; g != nil && g.Mode == ScaleInGuardLowLatency {
		if g.AgeBelowSeconds == nil || *g.AgeBelowSeconds <= 0 {
			return &PolicyError{
				Field:   "scale_in_guard.age_below_seconds",
				Message: "low_latency guard requires age_below_seconds > 0",
			}
		}
		if g.VisibleBelow == nil || *g.VisibleBelow <= 0 {
			return &PolicyError{
				Field:   "scale_in_guard.visible_below",
				Message: "low_latency guard requires visible_below > 0",
			}
		}
	}

	return nil
}

func validateProvider(prov *Provider) error {
	switch prov.Type {
	case ProviderSQS:
		return validateSQS(prov.SQS)
	case ProviderTime:
		return validateTime(prov.Time)
	case ProviderSQSTime:
		if err := validateSQS(prov.SQS); err != nil {
			return err
		}
		return validateTime(prov.Time)
	case ProviderCloudWatch:
		return validateCloudWatch(prov.CloudWatch)
	case "":
		return &PolicyError{Field: "provider.type", Message: "type is required"}
	default:
		return &PolicyError{
			Field:   "provider.type",
			Message: fmt.Sprintf("unknown type %q, expected sqs, time, sqs+time or cloudwatch", prov.Type),
		}
	}
}

func validateSQS(s *SQSProvider) error {
	if s == nil {
		return &PolicyError{Field: "provider.sqs", Message: "sqs block is required for this provider type"}
	}
	if !queueURLPattern.MatchString(s.QueueURL) {
		return &PolicyError{
			Field:   "provider.sqs.queue_url",
			Message: fmt.Sprintf("%q is not a valid SQS queue URL", s.QueueURL),
		}
	}
	return nil
}

func validateTime(t *TimeProvider) error {
	if t == nil {
		return &PolicyError{Field: "provider.time", Message: "time block is required for this provider type"}
	}
	if t.Mode != TimeModeFloor && t.Mode != TimeModeOverride {
		return &PolicyError{
			Field:   "provider.time.mode",
			Message: fmt.Sprintf("mode must be %q or %q, got %q", TimeModeFloor, TimeModeOverride, t.Mode),
		}
	}
	if len(t.Rules) == 0 {
		return &PolicyError{Field: "provider.time.rules", Message: "at least one rule is required"}
	}

	for i, rule := range t.Rules {
		field := func(name string) string {
			return fmt.Sprintf("provider.time.rules[%d].%s", i, name)
		}
		if len(rule.Days) == 0 {
			return &PolicyError{Field: field("days"), Message: "at least one day is required"}
		}
		for _, day := range rule.Days {
			if !validDays[day] {
				return &PolicyError{
					Field:   field("days"),
					Message: fmt.Sprintf("unknown day %q, expected mon..sun", day),
				}
			}
		}
		if rule.Start != "" && !clockPattern.MatchString(rule.Start) {
			return &PolicyError{
				Field:   field("start"),
				Message: fmt.Sprintf("%q is not a zero-padded HH:MM time", rule.Start),
			}
		}
		if rule.End != "" && !clockPattern.MatchString(rule.End) {
			return &PolicyError{
				Field:   field("end"),
				Message: fmt.Sprintf("%q is not a zero-padded HH:MM time", rule.End),
			}
		}
		// Zero-padded HH:MM compares correctly as a string.
		if rule.Start != "" && rule.End != "" && rule.Start >= rule.End {
			return &PolicyError{
				Field:   field("start"),
				Message: fmt.Sprintf("start (%s) must be before end (%s)", rule.Start, rule.End),
			}
		}
	}

	if t.Mode == TimeModeOverride {
		hasDesired := false
		for _, rule := range t.Rules {
			if rule.Desired != nil {
				hasDesired = true
				break
			}
		}
		if !hasDesired {
			return &PolicyError{
				Field:   "provider.time.rules",
				Message: "override mode requires at least one rule with a desired value",
			}
		}
	}

	return nil
}

func validateCloudWatch(cw *CloudWatchProvider) error {
	if cw == nil {
		return &PolicyError{Field: "provider.cloudwatch", Message: "cloudwatch block is required for this provider type"}
	}
	if cw.MetricName == "" {
		return &PolicyError{Field: "provider.cloudwatch.metric_name", Message: "metric_name is required"}
	}
	if cw.Namespace == "" {
		return &PolicyError{Field: "provider.cloudwatch.namespace", Message: "namespace is required"}
	}
	if cw.TargetValue <= 0 {
		return &PolicyError{Field: "provider.cloudwatch.target_value", Message: "target_value must be > 0"}
	}
	return nil
}
