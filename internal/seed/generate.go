// Package seed builds the initial catalog: a deterministic generator for demo
// data, YAML seed files, and a watcher that reloads a seed file on change.
package seed

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"jobmate/review-service/internal/model"
)

// Data is the content of a seed file.
type Data struct {
	Reviews     []model.Review     `yaml:"reviews" json:"reviews"`
	Internships []model.Internship `yaml:"internships" json:"internships"`
}

var (
	companies = []string{
		"Google", "Meta", "Apple", "Microsoft", "Amazon", "Netflix", "Tesla", "Stripe",
		"Airbnb", "Uber", "Slack", "Dropbox", "Spotify", "Adobe", "Salesforce",
		"GitHub", "Figma", "Notion", "Discord", "Shopify", "PayPal", "Reddit",
	}
	positions = []string{
		"Software Engineering Intern", "Data Science Intern", "Product Management Intern",
		"UI/UX Design Intern", "Machine Learning Intern", "Frontend Developer Intern",
		"Backend Developer Intern", "Full Stack Developer Intern", "DevOps Intern",
		"Cloud Engineering Intern", "Mobile App Developer Intern", "QA Engineer Intern",
		"Security Engineer Intern", "Data Engineer Intern", "AI Research Intern",
	}
	locations = []string{
		"San Francisco, CA", "Seattle, WA", "New York, NY", "Austin, TX", "Boston, MA",
		"Paris", "Lyon", "London", "Berlin", "Remote",
	}
	universities = []string{
		"Stanford University", "MIT", "UC Berkeley", "Carnegie Mellon", "Georgia Tech",
		"EPITA", "Sorbonne Université", "Imperial College", "TU München", "UT Austin",
	}
	tags = []string{
		"Great Culture", "Work-Life Balance", "Good Pay", "Learning Opportunities",
		"Mentorship", "Remote Work", "Flexible Hours", "Challenging Projects",
		"Team Collaboration", "Innovation", "Fast-Paced", "Startup Environment",
		"Good Benefits", "Free Food", "Career Growth", "Networking",
	}
	pros = []string{
		"Amazing learning opportunities with industry experts",
		"Great work-life balance and flexible schedules",
		"Cutting-edge technology and innovative projects",
		"Excellent mentorship and guidance from senior engineers",
		"Collaborative and inclusive team environment",
		"Competitive salary and comprehensive benefits",
		"Opportunity to work on real production systems",
		"Regular feedback and professional development",
	}
	cons = []string{
		"Sometimes overwhelming workload during peak periods",
		"Limited intern-specific activities and events",
		"Steep learning curve for new technologies",
		"Occasional communication gaps between teams",
		"Some processes could be more streamlined",
		"Limited remote work options",
		"Long commute to office location",
		"Few opportunities for cross-team collaboration",
	}
	requirements = []string{
		"Currently enrolled in a degree program",
		"Solid programming fundamentals",
		"Experience with Git",
		"Good written communication",
		"Familiarity with SQL",
		"Available for at least 10 weeks",
	}
	benefits = []string{
		"Housing stipend", "Mentorship program", "Return offer opportunity",
		"Free lunch", "Transport allowance", "Learning budget",
	}
)

// epoch anchors every generated date so output depends only on the seed.
var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Generate returns n reviews and n internships derived from seed. The same
// (n, seed) pair always yields the same data.
func Generate(n int, seed int64) Data {
	rng := rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
	d := Data{
		Reviews:     make([]model.Review, 0, n),
		Internships: make([]model.Internship, 0, n),
	}
	for i := 1; i <= n; i++ {
		d.Reviews = append(d.Reviews, generateReview(rng, i))
	}
	for i := 1; i <= n; i++ {
		d.Internships = append(d.Internships, generateInternship(rng, i))
	}
	return d
}

func generateReview(rng *rand.Rand, i int) model.Review {
	start := epoch.AddDate(0, rng.IntN(12), rng.IntN(28))
	end := start.AddDate(0, 0, 7*(8+rng.IntN(8)))
	posted := end.AddDate(0, 0, rng.IntN(30))
	rating := 1 + rng.IntN(5)

	status := "PUBLISHED"
	if i%7 == 0 {
		status = "DRAFT"
	}
	return model.Review{
		ID:             fmt.Sprintf("review-%d", i),
		CompanyName:    pick(rng, companies),
		InternshipName: pick(rng, positions),
		Period:         start.Format("Jan 2006") + " - " + end.Format("Jan 2006"),
		Rating:         rating,
		GoodPoints:     strings.Join(sample(rng, pros, 2+rng.IntN(3)), ". ") + ".",
		Concerns:       strings.Join(sample(rng, cons, 2+rng.IntN(3)), ". ") + ".",
		Tags:           sample(rng, tags, 2+rng.IntN(4)),
		Recommended:    rating >= 3,
		Status:         status,
		Author:         pick(rng, universities) + " student",
		Comments:       rng.IntN(30),
		CreatedAt:      posted,
		UpdatedAt:      posted,
	}
}

func generateInternship(rng *rand.Rand, i int) model.Internship {
	company := pick(rng, companies)
	position := pick(rng, positions)
	location := pick(rng, locations)
	weeks := 8 + rng.IntN(16)
	start := epoch.AddDate(1, rng.IntN(12), rng.IntN(28))
	end := start.AddDate(0, 0, 7*weeks)
	deadline := start.AddDate(0, 0, -(14 + rng.IntN(46)))

	it := model.Internship{
		ID:                  fmt.Sprintf("internship-%d", i),
		Name:                position,
		Company:             company,
		Description:         fmt.Sprintf("Join the %s team as a %s and ship work that reaches real users.", company, position),
		Location:            location,
		Duration:            fmt.Sprintf("%d weeks", weeks),
		StartDate:           &start,
		EndDate:             &end,
		Rating:              math.Round((3+2*rng.Float64())*10) / 10,
		Tags:                sample(rng, tags, 2+rng.IntN(4)),
		ContractType:        "internship",
		ApplicationDeadline: deadline,
		Requirements:        sample(rng, requirements, 2+rng.IntN(3)),
		Benefits:            sample(rng, benefits, 1+rng.IntN(3)),
	}
	// Remote offers in the demo data never state a stipend.
	if location != "Remote" {
		salary := float64(3000 + rng.IntN(5000))
		it.Salary = &salary
	}
	return it
}

func pick(rng *rand.Rand, from []string) string { return from[rng.IntN(len(from))] }

// sample returns k distinct entries of from in random order.
func sample(rng *rand.Rand, from []string, k int) []string {
	k = min(k, len(from))
	idx := rng.Perm(len(from))[:k]
	out := make([]string, k)
	for i, j := range idx {
		out[i] = from[j]
	}
	return out
}
