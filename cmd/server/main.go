/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the assignment accounting server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Optionally seed rate sets, specifications and holidays
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: zivinetz.db)
           Use ":memory:" for in-memory database
  -seed    Load the federal rate sets, the reference specifications and
           the Swiss public holidays for the current decade

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/zivinetz.db"

  # Fresh development instance with reference data
  ./server -db=":memory:" -seed

ENVIRONMENT:
  No environment variables currently. All config via flags.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matthiask/zivinetz-sub000/api"
	"github.com/matthiask/zivinetz-sub000/calendar"
	"github.com/matthiask/zivinetz-sub000/factory"
	"github.com/matthiask/zivinetz-sub000/store"
	"github.com/matthiask/zivinetz-sub000/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "zivinetz.db", "SQLite database path")
	seed := flag.Bool("seed", false, "seed reference rate sets, specifications and holidays")
	flag.Parse()

	// Initialize store
	st, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer st.Close()

	if *seed {
		if err := seedReferenceData(context.Background(), st); err != nil {
			log.Fatalf("Failed to seed reference data: %v", err)
		}
		log.Println("Seeded reference rate sets, specifications and holidays")
	}

	// Create router
	router := api.NewRouter(api.NewHandler(st))

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// seedReferenceData upserts the federal rate sets, the two reference
// specifications and a decade of Swiss public holidays around today.
// Everything is keyed, so re-seeding an existing database is harmless.
func seedReferenceData(ctx context.Context, st store.Store) error {
	for _, p := range factory.FederalRates() {
		if err := st.SavePolicy(ctx, p); err != nil {
			return err
		}
	}
	if err := st.SaveSpecification(ctx, factory.ProjectAdministration()); err != nil {
		return err
	}
	if err := st.SaveSpecification(ctx, factory.FieldGroup()); err != nil {
		return err
	}

	year := time.Now().Year()
	for y := year - 5; y <= year+5; y++ {
		for _, h := range calendar.SwissPublicHolidays(y) {
			if err := st.SavePublicHoliday(ctx, h); err != nil {
				return err
			}
		}
	}
	return nil
}
