package service

// AuthService decides who may use the console
type AuthService struct {
	adminID int64
}

// NewAuthService creates a new auth service
func NewAuthService(adminID int64) *AuthService {
	return &AuthService{adminID: adminID}
}

// IsAuthorized checks if user is the configured admin
func (s *AuthService) IsAuthorized(userID int64) bool {
	return s.adminID != 0 && userID == s.adminID
}

// AdminID returns the chat that receives notifications
func (s *AuthService) AdminID() int64 {
	return s.adminID
}
