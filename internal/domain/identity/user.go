package identity

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/wayfarer/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

// Password cost for bcrypt
const bcryptCost = 12

const (
	maxNameLength  = 100
	maxEmailLength = 200
	maxImageLength = 500
)

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9_.]{3,30}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	hasLetter       = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit        = regexp.MustCompile(`[0-9]`)
)

// User is a registered member of the network.
// Other aggregates only reference it by ID.
type User struct {
	shared.BaseEntity
	Name                string
	Email               string
	Username            string
	Image               string
	PasswordHash        string
	Interests           []string
	OnboardingCompleted bool
}

// NewUser creates a user with validated credentials.
// Username is optional at registration.
func NewUser(email, password, name, username string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	user := &User{
		BaseEntity: shared.NewBaseEntity(),
		Email:      email,
		Interests:  make([]string, 0),
	}
	if err := user.SetName(name); err != nil {
		return nil, err
	}
	if username != "" {
		normalized, err := NormalizeUsername(username)
		if err != nil {
			return nil, err
		}
		user.Username = normalized
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	user.PasswordHash = hash

	return user, nil
}

// SetName replaces the display name
func (u *User) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("Name cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return shared.NewValidationError("Name cannot exceed 100 characters")
	}
	u.Name = name
	u.Touch()
	return nil
}

// SetImage sets the avatar URL
func (u *User) SetImage(image string) error {
	if len(image) > maxImageLength {
		return shared.NewValidationError("Image URL cannot exceed 500 characters")
	}
	u.Image = image
	u.Touch()
	return nil
}

// CompleteOnboarding records the chosen interests and marks onboarding done.
// Every interest must come from the catalog; duplicates are dropped.
func (u *User) CompleteOnboarding(interests []string) error {
	cleaned, err := NormalizeInterests(interests)
	if err != nil {
		return err
	}
	u.Interests = cleaned
	u.OnboardingCompleted = true
	u.Touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SharedInterests counts interests present in both u and others
func (u *User) SharedInterests(others []string) int {
	set := make(map[string]struct{}, len(u.Interests))
	for _, i := range u.Interests {
		set[i] = struct{}{}
	}
	n := 0
	for _, o := range others {
		if _, ok := set[o]; ok {
			n++
			delete(set, o)
		}
	}
	return n
}

// NormalizeUsername folds a username to its canonical stored form and validates it.
// NFKC folds compatibility characters such as full-width letters before the check.
func NormalizeUsername(username string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(norm.NFKC.String(username)))
	if normalized == "" {
		return "", shared.NewValidationError("Username cannot be empty")
	}
	if !usernamePattern.MatchString(normalized) {
		return "", shared.NewValidationError("Username must be 3-30 characters of letters, numbers, underscores, or dots")
	}
	return normalized, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewValidationError("Password cannot exceed 72 characters")
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return shared.NewValidationError("Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewValidationError("Email cannot be empty")
	}
	if len(email) > maxEmailLength {
		return shared.NewValidationError("Email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewValidationError("Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
