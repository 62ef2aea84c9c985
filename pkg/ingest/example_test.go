package ingest_test

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/f1-results-pipeline/internal/testutil"
	"github.com/Sternrassler/f1-results-pipeline/pkg/client"
	"github.com/Sternrassler/f1-results-pipeline/pkg/ergast"
	"github.com/Sternrassler/f1-results-pipeline/pkg/ingest"
	"github.com/Sternrassler/f1-results-pipeline/pkg/ratelimit"
	"github.com/Sternrassler/f1-results-pipeline/pkg/season"
)

func Example() {
	mock := testutil.NewMockErgast()
	defer mock.Close()
	mock.SetEnvelope("/2021/driverStandings/1.json", testutil.DriverStandings(2021,
		testutil.Standing(1, "395.5", testutil.Driver("Max Verstappen", "1997-09-30", "Dutch", "VER"))))

	cfg := client.DefaultConfig("f1-history-example/1.0")
	cfg.BaseURL = mock.URL()
	c, err := client.New(cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer c.Close()

	run, err := ingest.NewRun(ergast.NewSource(c), season.YearRange{Start: 2021, End: 2021},
		ingest.WithLogger(zerolog.Nop()),
		ingest.WithSeasonOptions(season.WithLimiterFactory(ratelimit.UnlimitedFactory())),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := run.Collect(context.Background(), ingest.ResourceChampion); err != nil {
		fmt.Println(err)
		return
	}

	for _, ch := range run.Tables.Champions {
		fmt.Printf("%d %s (%s), %s, aged %d\n", ch.Year, ch.Driver, ch.Code, ch.Nationality, ch.Age)
	}
	// Output: 2021 Max Verstappen (VER), Dutch, aged 24
}
