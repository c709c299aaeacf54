package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// Actor is the authenticated user every operation is scoped to.
type Actor struct {
	UserID   int64
	Nickname string
}

// Users registers and authenticates ledger owners.
type Users struct {
	conn   *db.Connection
	logger *slog.Logger
	cost   int
}

// NewUsers creates a Users instance. A nil logger uses slog.Default().
func NewUsers(conn *db.Connection, logger *slog.Logger) *Users {
	if logger == nil {
		logger = slog.Default()
	}
	return &Users{conn: conn, logger: logger, cost: bcrypt.DefaultCost}
}

// Register creates a user. Registering an existing email with the same
// password returns that user with created=false; a different password
// fails with ErrDuplicateEmail.
func (u *Users) Register(email, password, nickname string) (Actor, bool, error) {
	email = normalizeEmail(email)
	nickname = strings.TrimSpace(nickname)

	if _, err := mail.ParseAddress(email); err != nil {
		return Actor{}, false, invalid("email", "%q is not an email address", email)
	}
	if len(password) < minPasswordLength {
		return Actor{}, false, invalid("password", "must be at least %d characters", minPasswordLength)
	}
	if nickname == "" {
		return Actor{}, false, invalid("nickname", "must not be empty")
	}

	repo := u.conn.Repository()
	existing, err := repo.FindUserByEmail(email)
	if err != nil {
		return Actor{}, false, persistence("find user", err)
	}
	if existing != nil {
		return u.existing(existing, password)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return Actor{}, false, fmt.Errorf("failed to hash password: %w", err)
	}

	user, created, err := repo.CreateUser(db.User{Email: email, PasswordHash: string(hash), Nickname: nickname})
	if err != nil {
		return Actor{}, false, persistence("create user", err)
	}
	if !created {
		return u.existing(user, password)
	}

	u.logger.Info("New user created", "nickname", user.Nickname, "user_id", user.ID)
	return actorOf(user), true, nil
}

func (u *Users) existing(user *db.User, password string) (Actor, bool, error) {
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Actor{}, false, fmt.Errorf("%w: %s", ErrDuplicateEmail, user.Email)
	}
	u.logger.Info("User already existed", "nickname", user.Nickname, "user_id", user.ID)
	return actorOf(user), false, nil
}

// Login authenticates a user by email and password.
func (u *Users) Login(email, password string) (Actor, error) {
	user, err := u.conn.Repository().FindUserByEmail(normalizeEmail(email))
	if err != nil {
		return Actor{}, persistence("find user", err)
	}
	if user == nil {
		return Actor{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return Actor{}, ErrInvalidCredentials
		}
		return Actor{}, fmt.Errorf("failed to verify password: %w", err)
	}

	u.logger.Debug("User logged in", "nickname", user.Nickname, "user_id", user.ID)
	return actorOf(user), nil
}

// Lookup resolves an actor by user id.
func (u *Users) Lookup(userID int64) (Actor, error) {
	user, err := u.conn.Repository().GetUser(userID)
	if err != nil {
		return Actor{}, persistence("get user", err)
	}
	if user == nil {
		return Actor{}, fmt.Errorf("%w: id %d", ErrUserNotFound, userID)
	}
	return actorOf(user), nil
}

func actorOf(u *db.User) Actor {
	return Actor{UserID: u.ID, Nickname: u.Nickname}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
