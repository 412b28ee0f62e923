package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/dom/hades-build-planner/internal/api/handlers"
	"github.com/dom/hades-build-planner/internal/domain"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:9999"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "populate":
		populateCmd(apiURL, args)
	case "like":
		likeCmd(apiURL, args)
	case "explain":
		explainCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Build Simulator - Development tool for filling the build browser

USAGE:
  simulator <command> [options]

COMMANDS:
  populate  Register authors who each assemble and publish random legal builds
  like      Register fans who like random public builds
  explain   Print the prerequisites of a boon as the server renders them
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:9999)

EXAMPLES:
  # Publish 5 builds with up to 8 boons each
  simulator populate

  # Publish 20 builds from 4 authors, reproducibly
  simulator populate --authors=4 --builds=5 --seed=42

  # Have 10 fans like some of the top 50 builds
  simulator like --count=10 --top=50

  # Explain a duo boon
  simulator explain --boon=1001`)
}

var tiers = []domain.Tier{domain.TierS, domain.TierA, domain.TierB, domain.TierC, domain.TierD}

func populateCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	authors := fs.Int("authors", 1, "Number of authors to register")
	builds := fs.Int("builds", 5, "Builds to publish per author")
	maxBoons := fs.Int("boons", 8, "Maximum boons per build")
	seed := fs.Int64("seed", 0, "Random seed (default: current time)")
	fs.Parse(args)

	if *authors < 1 || *builds < 1 || *maxBoons < 1 {
		fmt.Println("Error: --authors, --builds and --boons must be positive")
		os.Exit(1)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	client := NewAPIClient(apiURL)

	fmt.Println("=== Build Simulator: Populate ===")
	fmt.Printf("Seed: %d\n\n", *seed)

	weapons, err := client.Weapons()
	if err != nil {
		fmt.Printf("Failed to load weapons: %v\n", err)
		os.Exit(1)
	}
	var aspects []handlers.SelectionRequest
	for _, w := range weapons {
		for _, a := range w.Aspects {
			aspects = append(aspects, handlers.SelectionRequest{WeaponID: w.ID, AspectID: a.ID})
		}
	}
	if len(aspects) == 0 {
		fmt.Println("Error: the catalog has no weapon aspects")
		os.Exit(1)
	}

	published := 0
	for i := 0; i < *authors; i++ {
		author, token, err := client.RegisterUser(fmt.Sprintf("Author%d", i+1))
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to create author: %v\n", i+1, *authors, err)
			os.Exit(1)
		}
		fmt.Printf("Author %s:\n", author.DisplayName)

		for j := 0; j < *builds; j++ {
			sel, err := assemble(client, rng, aspects[rng.Intn(len(aspects))], *maxBoons)
			if err != nil {
				fmt.Printf("  [%d/%d] FAILED to assemble: %v\n", j+1, *builds, err)
				continue
			}

			result, err := client.Validate(sel)
			if err != nil {
				fmt.Printf("  [%d/%d] FAILED to validate: %v\n", j+1, *builds, err)
				continue
			}
			if !result.Valid {
				// Assembly only takes available boons, so this means the
				// engine and validator disagree
				fmt.Printf("  [%d/%d] INVALID build %v: %s\n", j+1, *builds, sel.BoonIDs, result.Errors.Error())
				continue
			}

			build, err := client.CreateBuild(token, handlers.BuildRequest{
				Name:       fmt.Sprintf("Sim build %d-%d", i+1, j+1),
				Difficulty: rng.Intn(33),
				Visibility: string(domain.VisibilityPublic),
				Tier:       string(tiers[rng.Intn(len(tiers))]),
				Selection:  sel,
			})
			if err != nil {
				fmt.Printf("  [%d/%d] FAILED to publish: %v\n", j+1, *builds, err)
				continue
			}
			published++
			fmt.Printf("  [%d/%d] %s (%d boons, tier %s)\n", j+1, *builds, build.ShareCode, len(build.BoonIDs), build.Tier)
		}
	}

	fmt.Println()
	total := *authors * *builds
	fmt.Printf("Done! Published %d of %d builds\n", published, total)
}

// assemble grows sel one random available boon at a time
func assemble(client *APIClient, rng *rand.Rand, sel handlers.SelectionRequest, maxBoons int) (handlers.SelectionRequest, error) {
	for len(sel.BoonIDs) < maxBoons {
		avail, err := client.Available(sel)
		if err != nil {
			return sel, err
		}
		if len(avail.Available) == 0 {
			break
		}
		pick := avail.Available[rng.Intn(len(avail.Available))]
		sel.BoonIDs = append(sel.BoonIDs, pick.ID)
	}
	return sel, nil
}

func likeCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("like", flag.ExitOnError)
	count := fs.Int("count", 5, "Number of fans to register")
	top := fs.Int("top", 20, "How many of the most liked builds to consider")
	chance := fs.Float64("chance", 0.5, "Probability that a fan likes a given build")
	seed := fs.Int64("seed", 0, "Random seed (default: current time)")
	fs.Parse(args)

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	client := NewAPIClient(apiURL)

	builds, err := client.PublicBuilds(*top)
	if err != nil {
		fmt.Printf("Failed to list builds: %v\n", err)
		os.Exit(1)
	}
	if len(builds) == 0 {
		fmt.Println("No public builds yet. Run 'simulator populate' first.")
		return
	}

	fmt.Printf("Registering %d fans for %d builds...\n\n", *count, len(builds))

	likes := 0
	for i := 0; i < *count; i++ {
		fan, token, err := client.RegisterUser(fmt.Sprintf("Fan%d", i+1))
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to create fan: %v\n", i+1, *count, err)
			continue
		}

		liked := 0
		for _, b := range builds {
			if rng.Float64() >= *chance {
				continue
			}
			if err := client.LikeBuild(token, b.ID); err != nil {
				fmt.Printf("  %s FAILED to like %s: %v\n", fan.DisplayName, b.ShareCode, err)
				continue
			}
			liked++
		}
		likes += liked
		fmt.Printf("  [%d/%d] %s liked %d builds\n", i+1, *count, fan.DisplayName, liked)
	}

	fmt.Println()
	fmt.Printf("Done! %d likes recorded\n", likes)
}

func explainCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("explain", flag.ExitOnError)
	boonID := fs.Int("boon", 0, "Boon ID (required)")
	fs.Parse(args)

	if *boonID <= 0 {
		fmt.Println("Error: --boon is required")
		fmt.Println("\nUsage: simulator explain --boon=1001")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	details, err := client.Prerequisites(*boonID)
	if err != nil {
		fmt.Printf("Failed to explain boon %d: %v\n", *boonID, err)
		os.Exit(1)
	}

	fmt.Printf("%s (%s)\n", details.Boon.Name, details.Category)
	fmt.Printf("  %s\n", details.Summary)
	for _, cond := range details.Conditions {
		fmt.Printf("  - %s\n", cond)
	}
	for _, ref := range details.Incompatible {
		fmt.Printf("  cannot be taken with %s\n", ref.Name)
	}
}
