package autoscaling

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// =============================================================================
// Publisher State Machine
// =============================================================================

// Outcome is the terminal state of a publish attempt. Every outcome is
// non-fatal to the surrounding deployment.
type Outcome string

const (
	// OutcomeAbsent means the document carries no autoscaling_configs block.
	OutcomeAbsent Outcome = "absent"
	// OutcomeInvalid means the block failed schema or cross-field checks.
	OutcomeInvalid Outcome = "invalid"
	// OutcomePublished means the conditional write succeeded.
	OutcomePublished Outcome = "published"
	// OutcomeSkipped means the write was not attempted (missing table) or
	// was rejected because a newer record already exists.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means a transport or permission error stopped the write.
	OutcomeFailed Outcome = "publish_failed"
)

// ErrNewerRecordExists is returned by Store.PutConditional when the
// optimistic-concurrency condition rejects the write.
var ErrNewerRecordExists = errors.New("a newer autoscaling record already exists")

// Store persists autoscaling records. Implementations map their backend's
// conditional-write rejection onto ErrNewerRecordExists.
type Store interface {
	TableExists(ctx context.Context, table string) (bool, error)
	PutConditional(ctx context.Context, table string, record Record) error
}

// Request identifies the record being published.
type Request struct {
	Environment string
	Cluster     string
	Service     string
	// CommitSHA should be resolved by the caller before publishing.
	CommitSHA string
}

// Result carries the four reportable values for the invoking pipeline.
// ServiceKey, Checksum and UpdatedAt are only set once a record was built,
// so absent and invalid outcomes report them empty.
type Result struct {
	Outcome    Outcome
	ServiceKey string
	Checksum   string
	UpdatedAt  int64
	Reason     string
}

// Published reports whether the record landed.
func (r Result) Published() bool {
	return r.Outcome == OutcomePublished
}

// Publisher drives a policy block through validate and conditional write.
type Publisher struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewPublisher creates a Publisher on the given store.
func NewPublisher(store Store, logger *slog.Logger) *Publisher {
	return &Publisher{
		store:  store,
		logger: logger.With("component", "autoscaling_publisher"),
		now:    time.Now,
	}
}

// Publish runs the state machine for one raw autoscaling_configs block.
// It never returns an error: every failure is folded into the Result so the
// caller can report it and keep deploying.
func (p *Publisher) Publish(ctx context.Context, raw map[string]any, req Request) Result {
	if raw == nil {
		p.logger.Info("no autoscaling_configs block found, nothing to publish")
		return Result{Outcome: OutcomeAbsent}
	}

	policy, err := DecodePolicy(raw)
	if err == nil {
		err = Validate(policy)
	}
	if err != nil {
		p.logger.Error("autoscaling config rejected, deploy continues", "error", err)
		return Result{Outcome: OutcomeInvalid, Reason: err.Error()}
	}

	record, err := NewRecord(raw, req.Environment, req.Cluster, req.Service, req.CommitSHA, p.now().Unix())
	if err != nil {
		p.logger.Error("building autoscaling record failed, deploy continues", "error", err)
		return Result{Outcome: OutcomeFailed, Reason: err.Error()}
	}

	table := TableName(req.Cluster)
	skipped := func(reason string) Result {
		return Result{
			Outcome:    OutcomeSkipped,
			ServiceKey: record.ServiceKey,
			Checksum:   record.Checksum,
			UpdatedAt:  record.UpdatedAt,
			Reason:     reason,
		}
	}

	exists, err := p.store.TableExists(ctx, table)
	if err != nil {
		p.logger.Error("checking config table failed, deploy continues", "table", table, "error", err)
		return Result{Outcome: OutcomeFailed, Reason: err.Error()}
	}
	if !exists {
		p.logger.Warn("config table does not exist, skipping publish", "table", table)
		return skipped("table " + table + " does not exist")
	}

	if err := p.store.PutConditional(ctx, table, record); err != nil {
		if errors.Is(err, ErrNewerRecordExists) {
			p.logger.Warn("existing record is newer, skipping publish",
				"service_key", record.ServiceKey)
			return skipped("existing record is newer")
		}
		p.logger.Error("publishing autoscaling record failed, deploy continues",
			"service_key", record.ServiceKey, "error", err)
		return Result{Outcome: OutcomeFailed, Reason: err.Error()}
	}

	p.logger.Info("published autoscaling config",
		"service_key", record.ServiceKey,
		"checksum", record.Checksum[:12],
		"updated_at", record.UpdatedAt)
	return Result{
		Outcome:    OutcomePublished,
		ServiceKey: record.ServiceKey,
		Checksum:   record.Checksum,
		UpdatedAt:  record.UpdatedAt,
	}
}
