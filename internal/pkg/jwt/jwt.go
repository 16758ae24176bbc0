package jwt

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenLifetime = 5 * time.Minute
)

var ErrMissingClaim = errors.New("required claim is missing or invalid")

// Scope is what a token says about its bearer: who, which organization, which branches.
// An empty BranchIDs grants every branch of the organization.
type Scope struct {
	UserID         string
	EmployeeID     *string
	OrganizationID string
	BranchIDs      []string
	Role           user.Role
}

// CanSeeBranch reports whether branchID is inside the scope.
func (s Scope) CanSeeBranch(branchID string) bool {
	if len(s.BranchIDs) == 0 {
		return true
	}
	for _, id := range s.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}

type Service interface {
	GenerateAccessToken(scope Scope) (token string, expiresAt int64, err error)
	GenerateSSEToken(scope Scope) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (Scope, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func scopeClaims(scope Scope, tokenType string, expiresAt int64) map[string]interface{} {
	branchIDs := scope.BranchIDs
	if branchIDs == nil {
		branchIDs = []string{}
	}
	claims := map[string]interface{}{
		"user_id":         scope.UserID,
		"organization_id": scope.OrganizationID,
		"branch_ids":      branchIDs,
		"role":            string(scope.Role),
		"type":            tokenType,
		"exp":             expiresAt,
	}
	if scope.EmployeeID != nil {
		claims["employee_id"] = *scope.EmployeeID
	}
	return claims
}

func (j *JWTService) GenerateAccessToken(scope Scope) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(scopeClaims(scope, TokenTypeAccess, expiresAt))
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for SSE connections
// EventSource cannot set headers, so the stream endpoint takes it as a query parameter.
func (j *JWTService) GenerateSSEToken(scope Scope) (token string, expiresIn int, err error) {
	expiresAt := time.Now().Add(sseTokenLifetime).Unix()

	_, tokenString, err := j.tokenAuth.Encode(scopeClaims(scope, TokenTypeSSE, expiresAt))
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenLifetime.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns the scope it carries
func (j *JWTService) ValidateSSEToken(tokenString string) (Scope, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return Scope{}, err
	}

	claims := token.PrivateClaims()
	if tokenType, _ := claims["type"].(string); tokenType != TokenTypeSSE {
		return Scope{}, jwt.ErrInvalidJWT()
	}

	return ScopeFromClaims(claims)
}

// ScopeFromClaims reads the scope claims of an access or SSE token.
// organization_id is required; branch_ids may be absent or empty.
func ScopeFromClaims(claims map[string]interface{}) (Scope, error) {
	orgID, ok := claims["organization_id"].(string)
	if !ok || orgID == "" {
		return Scope{}, ErrMissingClaim
	}

	scope := Scope{OrganizationID: orgID}
	scope.UserID, _ = claims["user_id"].(string)
	if role, ok := claims["role"].(string); ok {
		scope.Role = user.Role(role)
	}
	if employeeID, ok := claims["employee_id"].(string); ok && employeeID != "" {
		scope.EmployeeID = &employeeID
	}

	switch ids := claims["branch_ids"].(type) {
	case []string:
		scope.BranchIDs = append(scope.BranchIDs, ids...)
	case []interface{}:
		for _, v := range ids {
			id, ok := v.(string)
			if !ok {
				return Scope{}, ErrMissingClaim
			}
			scope.BranchIDs = append(scope.BranchIDs, id)
		}
	case nil:
	default:
		return Scope{}, ErrMissingClaim
	}

	return scope, nil
}
