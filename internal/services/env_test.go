package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/bmc-backend/internal/clients/redis"
	"github.com/yungbote/bmc-backend/internal/listquery"
	"github.com/yungbote/bmc-backend/internal/repos"
	"github.com/yungbote/bmc-backend/internal/testutil"
	"github.com/yungbote/bmc-backend/internal/types"
)

// testEnv wires the full service graph against a rolled-back transaction
// with one seeded team and user.
type testEnv struct {
	tx          *gorm.DB
	ctx         context.Context
	team        *types.Team
	user        *types.User
	authSvc     AuthService
	canvasSvc   CanvasService
	entrySvc    EntryService
	snapshotSvc SnapshotService
	calcSvc     CalculationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tx := testutil.Tx(t)
	log := testutil.Logger(t)

	team := testutil.SeedTeam(t, tx, "Acme")
	user := testutil.SeedUser(t, tx, team.ID)

	userRepo := repos.NewUserRepo(tx, log)
	canvasRepo := repos.NewCanvasRepo(tx, log)
	blockRepo := repos.NewBuildingBlockRepo(tx, log)
	entryRepo := repos.NewEntryRepo(tx, log)
	snapshotRepo := repos.NewSnapshotRepo(tx, log)
	activityRepo := repos.NewActivityLogRepo(tx, log)

	cache := redis.NewNopCalcCache()
	authSvc := NewAuthService(tx, log, userRepo, "test-secret", time.Hour)
	activitySvc := NewActivityService(tx, log, activityRepo)
	canvasSvc := NewCanvasService(tx, log, canvasRepo, blockRepo, authSvc, activitySvc, cache)
	entrySvc := NewEntryService(tx, log, entryRepo, blockRepo, canvasRepo, authSvc, activitySvc, cache)
	snapshotSvc := NewSnapshotService(tx, log, snapshotRepo, canvasRepo, authSvc, activitySvc)
	calcSvc := NewCalculationService(tx, log, canvasRepo, authSvc, cache)

	return &testEnv{
		tx:          tx,
		ctx:         testutil.Ctx(user.ID, team.ID),
		team:        team,
		user:        user,
		authSvc:     authSvc,
		canvasSvc:   canvasSvc,
		entrySvc:    entrySvc,
		snapshotSvc: snapshotSvc,
		calcSvc:     calcSvc,
	}
}

func listParamsEmpty() listquery.Params { return listquery.Params{} }

// otherTeamCtx seeds a second team plus member and returns a context scoped
// to it.
func (env *testEnv) otherTeamCtx(t *testing.T) context.Context {
	t.Helper()
	team := testutil.SeedTeam(t, env.tx, "Rival")
	user := testutil.SeedUser(t, env.tx, team.ID)
	return testutil.Ctx(user.ID, team.ID)
}
