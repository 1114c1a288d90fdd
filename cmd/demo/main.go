// Command demo walks through the optimistic mutation loop in-process: it
// submits creates against a sqlite-backed task service with the artificial
// create delay enabled and prints the reconciled view while the mutations
// are in flight, so the pending-entry rendering is visible without a
// browser.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kreqo/mytasks/internal/client"
	"github.com/kreqo/mytasks/internal/identity"
	"github.com/kreqo/mytasks/internal/models"
	"github.com/kreqo/mytasks/internal/repository"
	"github.com/kreqo/mytasks/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	gateway := identity.NewSessionGateway(userRepo)
	svc := services.NewTaskService(taskRepo, gateway, services.TaskServiceOptions{
		CreateDelay: 750 * time.Millisecond,
	})

	c := client.New(svc)
	defer c.Close()

	if err := c.Refresh(context.Background()); err != nil {
		log.Fatalf("Initial fetch failed: %v", err)
	}

	c.SubmitCreate("Buy milk")
	c.SubmitCreate("Ship release")

	printView(c, "while creates are pending")

	c.Wait()
	time.Sleep(100 * time.Millisecond) // let the view observe the bump
	printView(c, "after confirmation and refetch")

	snapshot := c.ReconciledView()
	if len(snapshot.Entries) > 0 {
		first := snapshot.Entries[0].Task
		c.SubmitToggle(first.ID, true)
		printView(c, "after optimistic toggle")
		c.Wait()
	}
}

func printView(c *client.Client, label string) {
	snapshot := c.ReconciledView()
	fmt.Printf("--- %s ---\n", label)
	if snapshot.Err != nil {
		fmt.Printf("    error: %v\n", snapshot.Err)
	}
	for _, entry := range snapshot.Entries {
		mark := " "
		if entry.Task.Completed {
			mark = "x"
		}
		if entry.Pending {
			fmt.Printf("[%s] %-20s (pending)\n", mark, entry.Task.Title)
			continue
		}
		owner := "guest"
		if entry.Task.Owner != nil {
			owner = entry.Task.Owner.Username
		}
		fmt.Printf("[%s] %-20s #%d by %s\n", mark, entry.Task.Title, entry.Task.ID, owner)
	}
}
