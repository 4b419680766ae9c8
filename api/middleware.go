package api

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/extortion-watch/extortion-report-api/databases"
	"github.com/extortion-watch/extortion-report-api/models"
)

// Auth owns the session store: a go-guardian authenticator with a
// cached bearer strategy holding the opaque session tokens, plus a
// basic strategy reserved for the credential exchange on login. It is
// injected where needed rather than living in a package-level
// singleton.
type Auth struct {
	DB databases.UserDatabase

	authenticator auth.Authenticator
	credentials   auth.Strategy
	cache         store.Cache
}

// NewAuth sets up the go-guardian strategies and token cache. Only the
// bearer strategy is enabled on the authenticator; protected routes
// take session tokens, never raw credentials.
func NewAuth(db databases.UserDatabase) *Auth {
	a := &Auth{DB: db}
	a.authenticator = auth.New()
	a.cache = store.NewFIFO(context.Background(), time.Hour*24*365) // sessions live for the process lifetime
	a.credentials = basic.New(a.validateUser, a.cache)
	tokenStrategy := bearer.New(bearer.NoOpAuthenticate, a.cache)

	a.authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
	return a
}

// Middleware gates a route on a valid session token. On success the
// resolved session is stashed in the request context; otherwise the
// request is rejected with 401 before any handler work happens.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		sess, err := a.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugf("user %s authenticated", sess.Name)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

// Authenticate resolves the bearer token carried on the request
func (a *Auth) Authenticate(r *http.Request) (models.Session, error) {
	info, err := a.authenticator.Authenticate(r)
	if err != nil {
		return models.Session{}, err
	}
	return sessionFromInfo(info), nil
}

// AuthenticateToken resolves a bare token string. Websocket clients
// cannot set headers from the browser, so the token arrives as a
// query parameter and is rewritten onto a cloned request here.
func (a *Auth) AuthenticateToken(r *http.Request, token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, fmt.Errorf("missing token")
	}
	rc := r.Clone(r.Context())
	rc.Header.Set("Authorization", "Bearer "+token)
	return a.Authenticate(rc)
}

// AuthenticateCredentials checks an email and password against the
// user directory through the basic strategy. This is the only place
// raw credentials are accepted.
func (a *Auth) AuthenticateCredentials(r *http.Request, email, password string) (models.Session, error) {
	rc := r.Clone(r.Context())
	rc.SetBasicAuth(email, password)
	info, err := a.credentials.Authenticate(rc.Context(), rc)
	if err != nil {
		return models.Session{}, err
	}
	return sessionFromInfo(info), nil
}

// IssueToken mints an opaque session token for an authenticated
// session and registers it with the cached bearer strategy
func (a *Auth) IssueToken(r *http.Request, sess models.Session) string {
	token := uuid.New().String()
	info := auth.NewDefaultUser(sess.Name, sess.UserID, []string{sess.UserType}, nil)
	tokenStrategy := a.authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Append(tokenStrategy, token, info, r)
	return token
}

// RevokeToken revokes a token
func (a *Auth) RevokeToken(w http.ResponseWriter, r *http.Request) {
	reqToken := r.Header.Get("Authorization")
	splitToken := strings.Split(reqToken, "Bearer ")
	if len(splitToken) < 2 {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "unauthorized"}`))
		return
	}
	reqToken = splitToken[1]

	tokenStrategy := a.authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Revoke(tokenStrategy, reqToken, r)
	body := fmt.Sprintf(`{"revoked token": "%s"}`, reqToken)
	w.Write([]byte(body))
}

// validateUser backs the basic strategy with a bcrypt check against
// the user directory
func (a *Auth) validateUser(ctx context.Context, r *http.Request, email, password string) (auth.Info, error) {
	emailHash := sha256.Sum256([]byte(email))

	user, err := a.DB.FindOne(ctx, bson.M{"user.email": email})
	if err != nil {
		return nil, fmt.Errorf("no matching email found")
	}

	expectedEmailHash := sha256.Sum256([]byte(user.Details.Email))
	emailMatch := subtle.ConstantTimeCompare(emailHash[:], expectedEmailHash[:]) == 1

	err = bcrypt.CompareHashAndPassword([]byte(user.Details.Password), []byte(password))
	if err != nil {
		return nil, fmt.Errorf("failed to compare password")
	}

	if emailMatch {
		return auth.NewDefaultUser(user.Details.Name, user.ID.Hex(), []string{user.Details.UserType}, nil), nil
	}
	return nil, fmt.Errorf("invalid credentials")
}

func sessionFromInfo(info auth.Info) models.Session {
	sess := models.Session{UserID: info.ID(), Name: info.UserName()}
	if groups := info.Groups(); len(groups) > 0 {
		sess.UserType = groups[0]
	}
	return sess
}
