package auth

import (
	"VereinsKasse/internal/logger"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"
)

// UserSession identifies one logged-in organization account. The user
// id doubles as the tenant key: every domain query filters on it.
type UserSession struct {
	SessionID        string `json:"session_id"`
	UserID           int64  `json:"user_id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	OrganizationName string `json:"organization_name"`
	SubscriptionTier string `json:"subscription_tier"`
	LastLoginTime    string `json:"last_login_time"`
	ClientIP         string `json:"client_ip"`
	IsLoggedIn       bool   `json:"is_logged_in"`
}

type AuthService struct {
	db           *sql.DB
	maxUsers     int
	sessions     map[string]*UserSession
	userPointers map[int64]*UserSession
	mu           sync.Mutex
	stopCh       chan struct{}
}

func NewAuthService(db *sql.DB, maxUsers int) *AuthService {
	if maxUsers <= 0 {
		maxUsers = 500
	}
	return &AuthService{
		db:           db,
		maxUsers:     maxUsers,
		sessions:     make(map[string]*UserSession),
		userPointers: make(map[int64]*UserSession),
		stopCh:       make(chan struct{}),
	}
}

func (a *AuthService) Name() string { return "auth" }

func (a *AuthService) Start() error {
	go a.sessionCleaner()
	return nil
}

func (a *AuthService) Stop() error {
	close(a.stopCh)
	return nil
}

func (a *AuthService) Login(email, password, clientIP string) (*UserSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, session := range a.sessions {
		if session.Email == email && session.IsLoggedIn {
			session.LastLoginTime = time.Now().Format(time.RFC3339)
			session.ClientIP = clientIP
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("User %s re-logged in, returning existing session", email))
			}
			return session, nil
		}
	}

	if len(a.sessions) >= a.maxUsers {
		return nil, errors.New("maximum concurrent users reached")
	}

	var (
		userID   int64
		name     string
		orgName  sql.NullString
		tier     sql.NullString
		isActive bool
	)
	query := `
	SELECT id, name, organization_name, subscription_tier, is_active
	FROM users
	WHERE email = $1 AND password_hash = $2
	`
	err := a.db.QueryRow(query, email, hashPassword(password)).Scan(
		&userID, &name, &orgName, &tier, &isActive,
	)
	if err != nil {
		return nil, errors.New("invalid credentials or user not found")
	}
	if !isActive {
		return nil, errors.New("account is deactivated")
	}

	sessionID := generateSessionID()
	session := &UserSession{
		SessionID:        sessionID,
		UserID:           userID,
		Name:             name,
		Email:            email,
		OrganizationName: orgName.String,
		SubscriptionTier: tier.String,
		LastLoginTime:    time.Now().Format(time.RFC3339),
		ClientIP:         clientIP,
		IsLoggedIn:       true,
	}
	a.sessions[sessionID] = session
	a.userPointers[userID] = session

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("User logged in: %s", email))
	}
	return session, nil
}

func (a *AuthService) Logout(sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	session, exists := a.sessions[sessionID]
	if !exists {
		return errors.New("session not found")
	}
	delete(a.sessions, sessionID)
	delete(a.userPointers, session.UserID)

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("User logged out: %d", session.UserID))
	}
	return nil
}

var globalAuthService *AuthService

// SetGlobalAuthService wires the instance used by the in-process helpers.
func SetGlobalAuthService(svc *AuthService) {
	globalAuthService = svc
}

// GetActiveSessions returns active sessions from the global AuthService.
func GetActiveSessions() []*UserSession {
	if globalAuthService == nil {
		return nil
	}
	return globalAuthService.GetActiveSessions()
}

// SessionByUserID resolves an active session for the given tenant, or
// nil when the user is not logged in. Used by the domain middleware.
func SessionByUserID(userID int64) *UserSession {
	if globalAuthService == nil {
		return nil
	}
	globalAuthService.mu.Lock()
	defer globalAuthService.mu.Unlock()
	return globalAuthService.userPointers[userID]
}

func (a *AuthService) GetActiveSessions() []*UserSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	sessions := make([]*UserSession, 0, len(a.sessions))
	for _, s := range a.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

func (a *AuthService) sessionCleaner() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			// session expiry logic can be added here
		}
	}
}

func generateSessionID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
