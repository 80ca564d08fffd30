// Package auth guards the web API with username/password logins and
// expiring bearer sessions.
package auth

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

const (
	DefaultUsersPath = "./data/users.yaml"

	defaultUser     = "admin"
	defaultPassword = "password"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingCredentials = errors.New("username and password required")
)

type user struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type usersFile struct {
	Users []user `yaml:"users"`
}

// UserStore keeps bcrypt password hashes in a YAML file.
type UserStore struct {
	mu    sync.RWMutex
	path  string
	l     *zap.Logger
	users map[string]string
}

// NewUserStore loads users from path. A missing file is created with a
// default admin account. Plaintext passwords found in the file are hashed
// and written back.
func NewUserStore(l *zap.Logger, path string) (*UserStore, error) {
	if path == "" {
		path = DefaultUsersPath
	}
	s := &UserStore{path: path, l: l, users: make(map[string]string)}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *UserStore) load() error {
	payload, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		hash, err := hashPassword(defaultPassword)
		if err != nil {
			return err
		}
		s.users[defaultUser] = hash
		s.l.Warn("Users file not found, created default account, change its password",
			zap.String("path", s.path), zap.String("username", defaultUser))
		return s.save()
	}
	if err != nil {
		return errors.Wrapf(err, "read users file %s", s.path)
	}

	var f usersFile
	if err := yaml.Unmarshal(payload, &f); err != nil {
		return errors.Wrapf(err, "parse users file %s", s.path)
	}

	rehashed := false
	for _, u := range f.Users {
		name := strings.TrimSpace(u.Username)
		pass := strings.TrimSpace(u.Password)
		if name == "" || pass == "" {
			continue
		}
		if !isBcryptHash(pass) {
			hash, err := hashPassword(pass)
			if err != nil {
				return err
			}
			pass = hash
			rehashed = true
			s.l.Info("Hashed plaintext password", zap.String("username", name))
		}
		s.users[name] = pass
	}

	s.l.Info("Loaded users", zap.Int("count", len(s.users)))

	if rehashed {
		return s.save()
	}

	return nil
}

func (s *UserStore) save() error {
	f := usersFile{Users: make([]user, 0, len(s.users))}
	for name, hash := range s.users {
		f.Users = append(f.Users, user{Username: name, Password: hash})
	}

	payload, err := yaml.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "encode users")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "create users dir")
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return errors.Wrapf(err, "write users file %s", s.path)
	}

	return nil
}

// Authenticate checks the password for username.
func (s *UserStore) Authenticate(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingCredentials
	}

	s.mu.RLock()
	hash, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
