package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"conference-api/config"
	"conference-api/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testTrack       = "track_1"
	testSubcategory = "Optimizing Laboratory Diagnostics in Integrated Health Systems"
	testBody        = "Background: Rural clinics report long delays for laboratory confirmation. " +
		"Methods: We reviewed forty facilities across three districts over one year. " +
		"Findings: Shared specimen transport cut turnaround by a third. " +
		"Conclusion: Integrated referral networks are a practical lever for primary care."
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// testClock hands out strictly increasing times so ordering by created_at is deterministic.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func testOptions(clock *testClock) Options {
	return Options{Timeout: 5 * time.Second, BulkMaxItems: 10, Now: clock.Now}
}

func validInput() AbstractInput {
	return AbstractInput{
		Title:    "Integrated specimen referral in rural districts",
		Abstract: testBody,
		Keywords: []string{"diagnostics", " referral ", ""},
		Authors: []models.Author{
			{Name: "Amina Okello", Email: "amina@example.org", Affiliation: "Makerere University"},
		},
		CorrespondingAuthorEmail: "Amina@Example.org",
		Track:                    testTrack,
		Subcategory:              testSubcategory,
		Format:                   models.FormatOral,
	}
}

// bodyWithWords returns a structured body of exactly n words.
func bodyWithWords(n int) string {
	words := []string{"Background", "Methods", "Findings", "Conclusion"}
	filler := make([]string, 0, n)
	for i := 0; i < n-len(words); i++ {
		filler = append(filler, "data")
	}
	return words[0] + " " + words[1] + " " + words[2] + " " + strings.Join(filler, " ") + " " + words[3]
}

func createAbstract(t *testing.T, svc *AbstractService) *AbstractDetail {
	t.Helper()
	a, err := svc.Create(context.Background(), validInput(), []byte(`{"title":"test"}`))
	require.NoError(t, err)
	return a
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
