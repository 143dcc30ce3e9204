// Package autoscaling validates scaling policies and publishes them as
// versioned records with optimistic-concurrency protection. Publishing is
// best-effort end to end: every failure path is reported, none of them may
// block a deployment.
package autoscaling

import (
	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Policy Types
// =============================================================================

// Provider type names. A policy carries exactly one of these variants.
const (
	ProviderSQS        = "sqs"
	ProviderTime       = "time"
	ProviderSQSTime    = "sqs+time"
	ProviderCloudWatch = "cloudwatch"
)

// Time rule modes.
const (
	TimeModeFloor    = "floor"
	TimeModeOverride = "override"
)

// ScaleInGuardLowLatency is the guard mode requiring both thresholds.
const ScaleInGuardLowLatency = "low_latency"

// Policy is the typed view of an autoscaling_configs block. The raw map is
// retained alongside: checksums and the persisted record snapshot use the
// author's exact content, not the typed projection.
type Policy struct {
	MinTasks *int `mapstructure:"min_tasks"`
	MaxTasks *int `mapstructure:"max_tasks"`

	Provider     *Provider     `mapstructure:"provider"`
	ScaleInGuard *ScaleInGuard `mapstructure:"scale_in_guard"`

	// Cooldown windows in seconds, applied by the downstream autoscaler.
	ScaleOutCooldown *int `mapstructure:"scale_out_cooldown"`
	ScaleInCooldown  *int `mapstructure:"scale_in_cooldown"`

	raw map[string]any
}

// Min returns min_tasks, defaulting to 0.
func (p *Policy) Min() int {
	if p.MinTasks != nil {
		return *p.MinTasks
	}
	return 0
}

// Max returns max_tasks, defaulting to 1.
func (p *Policy) Max() int {
	if p.MaxTasks != nil {
		return *p.MaxTasks
	}
	return 1
}

// Raw returns the undecoded block as authored.
func (p *Policy) Raw() map[string]any {
	return p.raw
}

// Provider selects the scaling signal source.
type Provider struct {
	Type       string              `mapstructure:"type"`
	SQS        *SQSProvider        `mapstructure:"sqs"`
	Time       *TimeProvider       `mapstructure:"time"`
	CloudWatch *CloudWatchProvider `mapstructure:"cloudwatch"`
}

// SQSProvider scales on queue depth.
type SQSProvider struct {
	QueueURL string `mapstructure:"queue_url"`
}

// TimeProvider scales on a weekly schedule.
type TimeProvider struct {
	Timezone string     `mapstructure:"timezone"`
	Mode     string     `mapstructure:"mode"`
	Rules    []TimeRule `mapstructure:"rules"`
}

// TimeRule is one schedule window. Start and end are optional: a rule
// without boundaries applies to the whole day.
type TimeRule struct {
	Days       []string `mapstructure:"days"`
	Start      string   `mapstructure:"start"`
	End        string   `mapstructure:"end"`
	MinDesired *int     `mapstructure:"min_desired"`
	MaxDesired *int     `mapstructure:"max_desired"`
	Desired    *int     `mapstructure:"desired"`
}

// CloudWatchProvider scales on a target-tracking metric.
type CloudWatchProvider struct {
	MetricName  string            `mapstructure:"metric_name"`
	Namespace   string            `mapstructure:"namespace"`
	TargetValue float64           `mapstructure:"target_value"`
	Statistic   string            `mapstructure:"statistic"`
	Dimensions  map[string]string `mapstructure:"dimensions"`
}

// ScaleInGuard delays scale-in while work is still flowing.
type ScaleInGuard struct {
	Mode            string `mapstructure:"mode"`
	AgeBelowSeconds *int   `mapstructure:"age_below_seconds"`
	VisibleBelow    *int   `mapstructure:"visible_below"`
}

// =============================================================================
// Extraction and Decoding
// =============================================================================

// ExtractPolicy pulls the raw autoscaling_configs block out of a merged
// service document. Returns nil when the block is absent or null; the
// publisher treats that as its ABSENT terminal state.
func ExtractPolicy(merged *yaml.Node) (map[string]any, error) {
	if merged == nil {
		return nil, nil
	}
	var doc struct {
		Autoscaling map[string]any `yaml:"autoscaling_configs"`
	}
	if err := merged.Decode(&doc); err != nil {
		return nil, &PolicyError{Field: "autoscaling_configs", Message: err.Error()}
	}
	return doc.Autoscaling, nil
}

// DecodePolicy converts a raw block into the typed Policy, keeping the raw
// map for checksum and storage. Scalar coercion is deliberately loose (an
// integer target_value decodes into the float field); Validate tightens the
// semantics afterwards.
func DecodePolicy(raw map[string]any) (*Policy, error) {
	var p Policy
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &PolicyError{Field: "autoscaling_configs", Message: err.Error()}
	}
	p.raw = raw
	return &p, nil
}
