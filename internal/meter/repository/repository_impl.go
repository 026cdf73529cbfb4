package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	meterdomain "github.com/smallbiznis/rentbook/internal/meter/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const readingColumns = `id, room_id, year, month, electricity_reading, water_reading, note, created_at, updated_at`

type repo struct{}

func Provide() meterdomain.Repository {
	return &repo{}
}

// Upsert replaces the values of an existing (room, year, month) reading.
// The stored id and created_at are kept on conflict.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, m *meterdomain.MeterReading) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "room_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"electricity_reading",
			"water_reading",
			"note",
			"updated_at",
		}),
	}).Create(m).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM meter_readings WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*meterdomain.MeterReading, error) {
	var item meterdomain.MeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+readingColumns+` FROM meter_readings WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindForPeriod(ctx context.Context, db *gorm.DB, roomID snowflake.ID, year, month int) (*meterdomain.MeterReading, error) {
	var item meterdomain.MeterReading
	err := db.WithContext(ctx).Raw(
		`SELECT `+readingColumns+` FROM meter_readings WHERE room_id = ? AND year = ? AND month = ?`,
		roomID,
		year,
		month,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

// List returns readings newest period first. A zero roomID lists every room.
func (r *repo) List(ctx context.Context, db *gorm.DB, roomID snowflake.ID) ([]meterdomain.MeterReading, error) {
	query := db.WithContext(ctx).Model(&meterdomain.MeterReading{})
	if roomID != 0 {
		query = query.Where("room_id = ?", roomID)
	}

	var items []meterdomain.MeterReading
	err := query.Order("year DESC").Order("month DESC").Order("room_id ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
