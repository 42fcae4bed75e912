package db

import (
	"fmt"
	"github.com/yungbote/bmc-backend/internal/logger"
	"github.com/yungbote/bmc-backend/internal/types"
	"github.com/yungbote/bmc-backend/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewPostgresService connects to Postgres, or to a local sqlite file when
// DB_DRIVER=sqlite (dev convenience). TranslateError is on so duplicate-key
// detection works identically on both drivers.
func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	driver := utils.GetEnv("DB_DRIVER", "postgres", log)
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	}

	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		path := utils.GetEnv("SQLITE_PATH", "bmc.db", log)
		dialector = sqlite.Open(path)
	default:
		host := utils.GetEnv("POSTGRES_HOST", "localhost", log)
		port := utils.GetEnv("POSTGRES_PORT", "5432", log)
		user := utils.GetEnv("POSTGRES_USER", "postgres", log)
		password := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		name := utils.GetEnv("POSTGRES_NAME", "bmc", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)
		dialector = postgres.Open(dsn)
	}

	serviceLog.Info("Connecting to database...", "driver", driver)
	conn, err := gorm.Open(dialector, cfg)
	if err != nil {
		serviceLog.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &PostgresService{db: conn, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.Team{},
		&types.TeamMember{},
		&types.Canvas{},
		&types.BuildingBlock{},
		&types.Entry{},
		&types.Snapshot{},
		&types.ActivityLog{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	s.log.Info("Configuring foreign key relationships...")
	constraints := []struct {
		name string
		ddl  string
	}{
		{"fk_bmc_canvas_team_id", `ALTER TABLE "bmc_canvas" ADD CONSTRAINT "fk_bmc_canvas_team_id" FOREIGN KEY ("team_id") REFERENCES "team"("id") ON DELETE CASCADE`},
		{"fk_bmc_building_block_canvas_id", `ALTER TABLE "bmc_building_block" ADD CONSTRAINT "fk_bmc_building_block_canvas_id" FOREIGN KEY ("bmc_canvas_id") REFERENCES "bmc_canvas"("id") ON DELETE CASCADE`},
		{"fk_bmc_entry_block_id", `ALTER TABLE "bmc_entry" ADD CONSTRAINT "fk_bmc_entry_block_id" FOREIGN KEY ("bmc_building_block_id") REFERENCES "bmc_building_block"("id") ON DELETE CASCADE`},
		{"fk_bmc_canvas_snapshot_canvas_id", `ALTER TABLE "bmc_canvas_snapshot" ADD CONSTRAINT "fk_bmc_canvas_snapshot_canvas_id" FOREIGN KEY ("bmc_canvas_id") REFERENCES "bmc_canvas"("id") ON DELETE CASCADE`},
		{"fk_team_member_team_id", `ALTER TABLE "team_member" ADD CONSTRAINT "fk_team_member_team_id" FOREIGN KEY ("team_id") REFERENCES "team"("id") ON DELETE CASCADE`},
		{"fk_team_member_user_id", `ALTER TABLE "team_member" ADD CONSTRAINT "fk_team_member_user_id" FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`},
	}
	for _, c := range constraints {
		var count int64
		if err := s.db.Raw(`SELECT COUNT(*) FROM pg_constraint WHERE conname = ?`, c.name).Scan(&count).Error; err != nil {
			return fmt.Errorf("check constraint %s: %w", c.name, err)
		}
		if count > 0 {
			continue
		}
		if err := s.db.Exec(c.ddl).Error; err != nil {
			return fmt.Errorf("add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
