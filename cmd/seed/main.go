package main

import (
	"context"
	"os"
	"time"

	"silvalley/internal/users/repository"
	"silvalley/pkg/client"
	"silvalley/pkg/config"
	"silvalley/pkg/model"
)

const JobName = "seed"

const (
	adminEmail    = "admin@silvalley.dev"
	adminPassword = "admin-password-1"
	demoEmail     = "john@example.com"
	demoPassword  = "demo-password-1"
)

// Seeds the demo catalog and accounts. Spaces go through the public API so
// they pass the same sanitization and validation as real traffic; only the
// admin role promotion touches the database directly, because the first admin
// cannot be minted through an API that requires an existing admin.
func main() {
	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	usersURL := envOr("USERS_API_URL", "http://localhost:8081")
	spacesURL := envOr("SPACES_API_URL", "http://localhost:8080")

	userClient := client.NewUserClient(usersURL)
	spaceClient := client.NewSpaceClient(spacesURL)

	cfg.Log.Info("Seeding demo data", "users_api", usersURL, "spaces_api", spacesURL)

	adminToken := bootstrapAdmin(cfg, userClient)
	registerDemoUser(cfg, userClient)
	seedSpaces(cfg, spaceClient, adminToken)

	cfg.Log.Info("Seeding completed")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// bootstrapAdmin registers the admin account, promotes it directly in the
// database, then logs in again so the returned token carries the admin role.
func bootstrapAdmin(cfg *config.Config, users *client.UserClient) string {
	resp, err := users.Register(model.Registration{
		Email:    adminEmail,
		Name:     "Silvalley Admin",
		Password: adminPassword,
	})
	if err != nil {
		cfg.Log.Fatal("Failed to register admin account", "error", err)
	}
	if resp.StatusCode >= 300 && resp.StatusCode != 409 {
		cfg.Log.Fatal("Admin registration rejected",
			"status", resp.StatusCode,
			"body", client.GetErrorMessage(resp),
		)
	}

	loginResp, err := users.Login(adminEmail, adminPassword)
	if err != nil {
		cfg.Log.Fatal("Failed to log in as admin", "error", err)
	}
	auth, err := users.DecodeAuth(loginResp)
	if err != nil {
		cfg.Log.Fatal("Failed to decode admin login response", "error", err)
	}

	if auth.User.Role != model.RoleAdmin {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		userRepo := repository.NewMongoUserRepository(cfg)
		if err := userRepo.UpdateRole(ctx, auth.User.ID, model.RoleAdmin); err != nil {
			cfg.Log.Fatal("Failed to promote admin account", "error", err)
		}

		// Log in again so the token reflects the new role.
		loginResp, err = users.Login(adminEmail, adminPassword)
		if err != nil {
			cfg.Log.Fatal("Failed to re-login after promotion", "error", err)
		}
		auth, err = users.DecodeAuth(loginResp)
		if err != nil {
			cfg.Log.Fatal("Failed to decode admin re-login response", "error", err)
		}
	}

	cfg.Log.Info("Admin account ready", "email", adminEmail)
	return auth.Token
}

func registerDemoUser(cfg *config.Config, users *client.UserClient) {
	resp, err := users.Register(model.Registration{
		Email:    demoEmail,
		Name:     "John Demo",
		Password: demoPassword,
	})
	if err != nil {
		cfg.Log.Fatal("Failed to register demo user", "error", err)
	}
	if resp.StatusCode >= 300 && resp.StatusCode != 409 {
		cfg.Log.Fatal("Demo user registration rejected",
			"status", resp.StatusCode,
			"body", client.GetErrorMessage(resp),
		)
	}

	cfg.Log.Info("Demo user ready", "email", demoEmail)
}

func seedSpaces(cfg *config.Config, spaces *client.SpaceClient, adminToken string) {
	for _, space := range catalog() {
		resp, err := spaces.Create(space, adminToken)
		if err != nil {
			cfg.Log.Fatal("Failed to create space", "name", space.Name, "error", err)
		}
		if resp.StatusCode >= 300 {
			cfg.Log.Error("Space creation rejected",
				"name", space.Name,
				"status", resp.StatusCode,
				"body", client.GetErrorMessage(resp),
			)
			continue
		}
		cfg.Log.Info("Space seeded", "name", space.Name, "location", space.Location)
	}
}

// catalog returns the demo spaces, including low-availability and sold-out
// entries so the booking flow's warnings can be exercised out of the box.
func catalog() []*model.Space {
	return []*model.Space{
		{
			Name:           "Downtown Workspace",
			Location:       "San Francisco, CA",
			Description:    "A modern coworking space in the heart of downtown with all amenities you need for productive work.",
			PricePerDay:    35,
			AvailableDesks: 15,
			Rating:         4.6,
			ReviewCount:    128,
			ImageURL:       "https://images.silvalley.dev/spaces/co-working-1.jpg",
			Amenities: model.Amenities{
				Wifi: true, Kitchen: true, MeetingRooms: true, Access24x7: true,
			},
		},
		{
			Name:           "Creative Hub",
			Location:       "New York, NY",
			Description:    "A vibrant space designed for creative professionals with open areas and private booths.",
			PricePerDay:    40,
			AvailableDesks: 2,
			Rating:         4.8,
			ReviewCount:    203,
			ImageURL:       "https://images.silvalley.dev/spaces/co-working-2.jpg",
			Amenities: model.Amenities{
				Wifi: true, Kitchen: true, MeetingRooms: true, Parking: true,
			},
		},
		{
			Name:           "Tech Loft",
			Location:       "Austin, TX",
			Description:    "A spacious loft with high-speed internet and modern amenities for tech professionals.",
			PricePerDay:    30,
			AvailableDesks: 20,
			Rating:         4.4,
			ReviewCount:    87,
			ImageURL:       "https://images.silvalley.dev/spaces/co-working-3.jpg",
			Amenities: model.Amenities{
				Wifi: true, MeetingRooms: true, Parking: true, Access24x7: true,
			},
		},
		{
			Name:           "Quiet Zone",
			Location:       "Seattle, WA",
			Description:    "A peaceful workspace designed for focus and concentration with soundproof booths and quiet areas.",
			PricePerDay:    28,
			AvailableDesks: 0,
			Rating:         4.2,
			ReviewCount:    64,
			ImageURL:       "https://images.silvalley.dev/spaces/co-working-4.jpg",
			Amenities: model.Amenities{
				Wifi: true, Kitchen: true,
			},
		},
		{
			Name:           "Startup Garage",
			Location:       "Boston, MA",
			Description:    "An industrial-style coworking space with a community of entrepreneurs and startup founders.",
			PricePerDay:    25,
			AvailableDesks: 3,
			Rating:         4.5,
			ReviewCount:    142,
			ImageURL:       "https://images.silvalley.dev/spaces/co-working-5.jpg",
			Amenities: model.Amenities{
				Wifi: true, Kitchen: true, MeetingRooms: true, Parking: true, Access24x7: true,
			},
		},
		{
			Name:           "Waterfront Office",
			Location:       "Miami, FL",
			Description:    "A bright and airy workspace with stunning views of the ocean and plenty of natural light.",
			PricePerDay:    45,
			AvailableDesks: 1,
			Rating:         4.9,
			ReviewCount:    311,
			ImageURL:       "https://images.silvalley.dev/spaces/co-working-6.jpg",
			Amenities: model.Amenities{
				Wifi: true, Kitchen: true, MeetingRooms: true, Parking: true,
			},
		},
		{
			Name:           "Mountain View Studio",
			Location:       "Denver, CO",
			Description:    "A cozy workspace with panoramic mountain views, perfect for those seeking inspiration from nature.",
			PricePerDay:    32,
			AvailableDesks: 8,
			Rating:         4.3,
			ReviewCount:    56,
			ImageURL:       "https://images.silvalley.dev/spaces/co-working-7.jpg",
			Amenities: model.Amenities{
				Wifi: true, Kitchen: true, Parking: true, Access24x7: true, Printing: true, Security: true,
			},
		},
		{
			Name:           "Innovation Campus",
			Location:       "Chicago, IL",
			Description:    "A large collaborative space designed for tech startups and innovation teams with state-of-the-art facilities.",
			PricePerDay:    38,
			AvailableDesks: 25,
			Rating:         4.7,
			ReviewCount:    189,
			ImageURL:       "https://images.silvalley.dev/spaces/co-working-8.jpg",
			Amenities: model.Amenities{
				Wifi: true, Kitchen: true, MeetingRooms: true, Parking: true,
				Access24x7: true, Printing: true, Security: true, AirConditioning: true,
			},
		},
		{
			Name:           "Urban Desk",
			Location:       "Portland, OR",
			Description:    "A hip, eco-friendly workspace in the heart of the city with sustainable design and community focus.",
			PricePerDay:    27,
			AvailableDesks: 0,
			Rating:         4.1,
			ReviewCount:    73,
			ImageURL:       "https://images.silvalley.dev/spaces/co-working-9.jpg",
			Amenities: model.Amenities{
				Wifi: true, Kitchen: true, MeetingRooms: true, Printing: true,
			},
		},
		{
			Name:           "Harbor Workspace",
			Location:       "Baltimore, MD",
			Description:    "A renovated warehouse space with industrial charm, located near the harbor with excellent transport links.",
			PricePerDay:    29,
			AvailableDesks: 12,
			Rating:         4.0,
			ReviewCount:    41,
			ImageURL:       "https://images.silvalley.dev/spaces/co-working-10.jpg",
			Amenities: model.Amenities{
				Wifi: true, MeetingRooms: true, Parking: true, Printing: true, Security: true,
			},
		},
		{
			Name:           "Desert Oasis Office",
			Location:       "Phoenix, AZ",
			Description:    "A bright, modern workspace with desert-inspired design elements and outdoor working areas for sunny days.",
			PricePerDay:    31,
			AvailableDesks: 2,
			Rating:         4.4,
			ReviewCount:    95,
			ImageURL:       "https://images.silvalley.dev/spaces/co-working-11.jpg",
			Amenities: model.Amenities{
				Wifi: true, Kitchen: true, Parking: true, Access24x7: true, Security: true, AirConditioning: true,
			},
		},
		{
			Name:           "Skyline Loft",
			Location:       "Atlanta, GA",
			Description:    "A premium workspace on the top floor with panoramic city views, luxury amenities, and private offices.",
			PricePerDay:    50,
			AvailableDesks: 5,
			Rating:         4.9,
			ReviewCount:    267,
			ImageURL:       "https://images.silvalley.dev/spaces/co-working-12.jpg",
			Amenities: model.Amenities{
				Wifi: true, Kitchen: true, MeetingRooms: true, Parking: true,
				Access24x7: true, Printing: true, Security: true, AirConditioning: true,
			},
		},
		{
			Name:           "Riverside Commons",
			Location:       "Nashville, TN",
			Description:    "A community-focused workspace along the river with music-themed meeting rooms and event spaces.",
			PricePerDay:    33,
			AvailableDesks: 0,
			Rating:         4.6,
			ReviewCount:    158,
			ImageURL:       "https://images.silvalley.dev/spaces/co-working-13.jpg",
			Amenities: model.Amenities{
				Wifi: true, Kitchen: true, MeetingRooms: true, Parking: true, Printing: true,
			},
		},
	}
}
