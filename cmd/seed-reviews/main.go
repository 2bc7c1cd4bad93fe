package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusworks/review-portal/internal/config"
	"github.com/campusworks/review-portal/internal/database"
	"github.com/campusworks/review-portal/internal/logger"
	"github.com/campusworks/review-portal/internal/model"
	"github.com/campusworks/review-portal/internal/repository"
	"github.com/campusworks/review-portal/internal/review"
)

// Seeds a small set of demo project groups so the portal is usable right
// after migration, and prints the rubric each review will grade against.

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	projectRepo := repository.NewProjectRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)

	fmt.Println("=== Review rubrics ===")
	for _, m := range review.All() {
		fmt.Printf("Review %-4s %-45s %d criteria, %g marks\n",
			m.Roman, m.ChecklistTitle, len(m.Criteria), m.TotalMax())
	}

	fmt.Println("\n=== Seeding demo groups ===")

	groups := []struct {
		project model.Project
		members []model.Member
	}{
		{
			project: model.Project{
				GroupID:   "BIA-01",
				Title:     "Campus Placement Tracker",
				Domain:    "Web Application",
				GuideName: "Dr. S. Raghavan",
			},
			members: []model.Member{
				{RollNo: "21BIA001", Name: "Asha K"},
				{RollNo: "21BIA002", Name: "Ravi Teja"},
				{RollNo: "21BIA003", Name: "Meena Iyer"},
				{RollNo: "21BIA004", Name: "Arjun Das"},
			},
		},
		{
			project: model.Project{
				GroupID:   "BIA-02",
				Title:     "Smart Hostel Attendance",
				Domain:    "IoT",
				GuideName: "Prof. L. Fernandes",
			},
			members: []model.Member{
				{RollNo: "21BIA011", Name: "Divya Nair"},
				{RollNo: "21BIA012", Name: "Karthik R"},
				{RollNo: "21BIA013", Name: "Sandeep V"},
			},
		},
	}

	seeded := 0
	for _, g := range groups {
		p := g.project
		if err := projectRepo.Create(ctx, &p); err != nil {
			if errors.Is(err, repository.ErrDuplicateGroup) {
				fmt.Printf("Group %s already exists, skipping\n", p.GroupID)
				continue
			}
			log.Fatal().Err(err).Str("group_id", p.GroupID).Msg("Failed to create group")
		}
		if err := memberRepo.ReplaceGroup(ctx, p.GroupID, g.members); err != nil {
			log.Fatal().Err(err).Str("group_id", p.GroupID).Msg("Failed to seed members")
		}
		fmt.Printf("Seeded %s with %d members\n", p.GroupID, len(g.members))
		seeded++
	}

	fmt.Printf("\nDone. %d groups seeded.\n", seeded)
}
