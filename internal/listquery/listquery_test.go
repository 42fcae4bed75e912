package listquery

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type widget struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"column:name"`
	Rank int    `gorm:"column:rank"`
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:listquery_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	tx := db.Begin()
	t.Cleanup(func() { tx.Rollback() })
	seed := []widget{
		{Name: "Alpha Widget", Rank: 3},
		{Name: "beta widget", Rank: 1},
		{Name: "Gamma Gadget", Rank: 2},
	}
	if err := tx.Create(&seed).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	return tx
}

func TestApplySearchIsCaseInsensitive(t *testing.T) {
	tx := testDB(t)
	var out []widget
	q := ApplySearch(tx.Model(&widget{}), Params{Search: "WIDGET"}, []string{"name"})
	if err := q.Find(&out).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("matches = %d, want 2", len(out))
	}
}

func TestApplySortRejectsUnknownColumn(t *testing.T) {
	tx := testDB(t)
	var out []widget
	q := ApplySort(tx.Model(&widget{}), Params{SortBy: "rank; DROP TABLE widgets", SortDir: "asc"}, []string{"name", "rank"}, "rank", "asc")
	if err := q.Find(&out).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	// Falls back to the default column.
	if out[0].Rank != 1 || out[2].Rank != 3 {
		t.Fatalf("order wrong: %+v", out)
	}
}

func TestApplySortAllowedColumn(t *testing.T) {
	tx := testDB(t)
	var out []widget
	q := ApplySort(tx.Model(&widget{}), Params{SortBy: "rank", SortDir: "desc"}, []string{"name", "rank"}, "name", "asc")
	if err := q.Find(&out).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if out[0].Rank != 3 {
		t.Fatalf("desc sort wrong: %+v", out)
	}
}

func TestPaginateClampsAndReportsHasMore(t *testing.T) {
	tx := testDB(t)
	var out []widget
	page, err := Paginate(tx.Model(&widget{}).Order("id asc"), Params{Limit: 2, Offset: 0}, &out)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if page.Total != 3 || page.Limit != 2 || !page.HasMore {
		t.Fatalf("page = %+v", page)
	}
	if len(out) != 2 {
		t.Fatalf("rows = %d, want 2", len(out))
	}

	var rest []widget
	last, err := Paginate(tx.Model(&widget{}).Order("id asc"), Params{Limit: 2, Offset: 2}, &rest)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if last.HasMore || len(rest) != 1 {
		t.Fatalf("last page = %+v rows %d", last, len(rest))
	}

	var capped []widget
	big, err := Paginate(tx.Model(&widget{}), Params{Limit: 10000}, &capped)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if big.Limit != MaxLimit {
		t.Fatalf("limit = %d, want clamped to %d", big.Limit, MaxLimit)
	}

	var defaulted []widget
	def, err := Paginate(tx.Model(&widget{}), Params{}, &defaulted)
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if def.Limit != DefaultLimit {
		t.Fatalf("limit = %d, want default %d", def.Limit, DefaultLimit)
	}
}
