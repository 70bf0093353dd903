package repository

import (
	"fmt"

	"github.com/cepro/flexsizing/model"
	"github.com/cepro/flexsizing/sweep"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Repository stores sweep outcomes to the local file system (sqlite).
type Repository struct {
	db *gorm.DB
}

func New(path string) (*Repository, error) {

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Migrate the schema
	err = db.AutoMigrate(&StoredRun{}, &StoredMetric{}, &StoredCapacity{})
	if err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return &Repository{
		db: db,
	}, nil
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AddOutcome stores the run, and for a successful run its metrics and capacities, in one transaction.
func (r *Repository) AddOutcome(o sweep.Outcome) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		run := newStoredRun(o)
		result := tx.Create(&run)
		if result.Error != nil {
			return fmt.Errorf("create run: %w", result.Error)
		}
		if o.Result == nil {
			return nil
		}

		metrics := newStoredMetrics(o)
		result = tx.Create(&metrics)
		if result.Error != nil {
			return fmt.Errorf("create metrics: %w", result.Error)
		}

		capacities := newStoredCapacities(o)
		if len(capacities) == 0 {
			return nil
		}
		result = tx.Create(&capacities)
		if result.Error != nil {
			return fmt.Errorf("create capacities: %w", result.Error)
		}
		return nil
	})
}

// GetRuns returns the runs of the given system, all systems when empty, oldest first.
func (r *Repository) GetRuns(system model.System, onlySucceeded bool) ([]StoredRun, error) {
	var runs []StoredRun

	query := r.db.Order("created_at asc")
	if system != "" {
		query = query.Where("system = ?", string(system))
	}
	if onlySucceeded {
		query = query.Where("status = ?", StatusSucceeded)
	}
	result := query.Find(&runs)
	if result.Error != nil {
		return nil, result.Error
	}
	return runs, nil
}

// GetMetrics returns the named metrics of a run.
func (r *Repository) GetMetrics(runID uuid.UUID) ([]StoredMetric, error) {
	var metrics []StoredMetric

	result := r.db.Where("run_id = ?", runID).Order("id asc").Find(&metrics)
	if result.Error != nil {
		return nil, result.Error
	}
	return metrics, nil
}

// GetCapacities returns the installed capacities of a run.
func (r *Repository) GetCapacities(runID uuid.UUID) ([]StoredCapacity, error) {
	var capacities []StoredCapacity

	result := r.db.Where("run_id = ?", runID).Order("asset asc").Find(&capacities)
	if result.Error != nil {
		return nil, result.Error
	}
	return capacities, nil
}

// CountFailures returns the number of stored failed runs by failure kind.
func (r *Repository) CountFailures() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	result := r.db.Model(&StoredRun{}).
		Select("status, count(*) as count").
		Where("status <> ?", StatusSucceeded).
		Group("status").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
