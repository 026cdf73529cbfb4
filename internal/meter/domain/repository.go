package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, reading *MeterReading) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MeterReading, error)
	FindForPeriod(ctx context.Context, db *gorm.DB, roomID snowflake.ID, year, month int) (*MeterReading, error)
	List(ctx context.Context, db *gorm.DB, roomID snowflake.ID) ([]MeterReading, error)
}
