package services

import (
	"soundtrace/config"
	"soundtrace/internal/database"
	"soundtrace/internal/events"
	"soundtrace/internal/ledger"
	"soundtrace/internal/repositories"
)

type Service struct {
	Transaction  *TransactionService
	Scheduler    *SchedulerService
	RecordWriter *RecordWriterService
	Ensure       *EnsureService
	Converge     *ConvergeService
	Relationship *RelationshipService
	Scrobble     *ScrobbleService
}

func New(db database.DB, config config.Config, eventBus *events.EventBus) (Service, error) {
	transactionService := NewTransactionService(db)
	repos := repositories.New(db)

	schedulerService := NewSchedulerService()
	recordWriterService := NewRecordWriterService(ledger.NewClient(config))
	ensureService := NewEnsureService(repos, recordWriterService)
	convergeService := NewConvergeService(repos, config)
	relationshipService := NewRelationshipService(repos)
	scrobbleService := NewScrobbleService(
		repos,
		ensureService,
		recordWriterService,
		convergeService,
		relationshipService,
		transactionService,
		eventBus,
		config,
	)

	return Service{
		Transaction:  transactionService,
		Scheduler:    schedulerService,
		RecordWriter: recordWriterService,
		Ensure:       ensureService,
		Converge:     convergeService,
		Relationship: relationshipService,
		Scrobble:     scrobbleService,
	}, nil
}
