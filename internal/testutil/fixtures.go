package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dom/hades-build-planner/internal/catalog"
	"github.com/dom/hades-build-planner/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	displayName string
	password    string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		displayName: fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password:    "testpassword123",
	}
}

// WithDisplayName sets the display name
func (b *UserBuilder) WithDisplayName(name string) *UserBuilder {
	b.displayName = name
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		DisplayName:  b.displayName,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// BuildAndAuthenticate creates a user via API and returns the user and access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	reqBody := map[string]string{
		"displayName": b.displayName,
		"password":    b.password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.User.ID)
	user := &domain.User{
		ID:          userID,
		DisplayName: authResp.User.DisplayName,
	}

	return user, authResp.AccessToken
}

// BuildBuilder creates stored builds with a builder pattern. The selection
// is written as given, without being checked against a catalog.
type BuildBuilder struct {
	owner      *domain.User
	name       string
	visibility domain.Visibility
	tier       domain.Tier
	selection  catalog.Selection
	godIDs     []int
	likeCount  int
}

// NewBuildBuilder creates a new BuildBuilder with default values
func NewBuildBuilder() *BuildBuilder {
	return &BuildBuilder{
		name:       fmt.Sprintf("build_%s", uuid.New().String()[:8]),
		visibility: domain.VisibilityPublic,
		selection:  StaffSelection(BoonZeusAttack),
		godIDs:     []int{GodZeus},
	}
}

// WithOwner sets the build author
func (b *BuildBuilder) WithOwner(user *domain.User) *BuildBuilder {
	b.owner = user
	return b
}

// WithName sets the build name
func (b *BuildBuilder) WithName(name string) *BuildBuilder {
	b.name = name
	return b
}

// WithVisibility sets who can read the build
func (b *BuildBuilder) WithVisibility(v domain.Visibility) *BuildBuilder {
	b.visibility = v
	return b
}

// WithTier sets the author's ranking
func (b *BuildBuilder) WithTier(tier domain.Tier) *BuildBuilder {
	b.tier = tier
	return b
}

// WithSelection sets the stored loadout and the gods used for filtering
func (b *BuildBuilder) WithSelection(sel catalog.Selection, godIDs ...int) *BuildBuilder {
	b.selection = sel
	b.godIDs = godIDs
	return b
}

// WithLikeCount sets the denormalized like counter
func (b *BuildBuilder) WithLikeCount(n int) *BuildBuilder {
	b.likeCount = n
	return b
}

// Build creates the build in the database
func (b *BuildBuilder) Build(t *testing.T, db *gorm.DB) *domain.Build {
	t.Helper()

	if b.owner == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.owner = user
	}

	boonIDs := b.selection.BoonIDs
	if boonIDs == nil {
		boonIDs = []int{}
	}
	godIDs := b.godIDs
	if godIDs == nil {
		godIDs = []int{}
	}
	boonJSON, _ := json.Marshal(boonIDs)
	godJSON, _ := json.Marshal(godIDs)

	build := &domain.Build{
		ID:         uuid.New(),
		ShareCode:  strings.ToUpper(uuid.New().String()[:8]),
		UserID:     b.owner.ID,
		Name:       b.name,
		Visibility: b.visibility,
		Tier:       b.tier,
		WeaponID:   b.selection.WeaponID,
		AspectID:   b.selection.AspectID,
		FamiliarID: b.selection.FamiliarID,
		BoonIDs:    datatypes.JSON(boonJSON),
		GodIDs:     datatypes.JSON(godJSON),
		LikeCount:  b.likeCount,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := db.Create(build).Error; err != nil {
		t.Fatalf("failed to create build: %v", err)
	}

	return build
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}
