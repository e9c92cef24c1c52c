package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/eduforge/platform/internal/domain/entity"
	repo "github.com/eduforge/platform/internal/domain/repository"
	"github.com/eduforge/platform/pkg/helpers"
)

// Service implements the identity core: registration with mandatory email
// verification, the instructor approval workflow, multi-factor and federated
// login, and password recovery.
type Service struct {
	Repo            repo.AccountRepository
	JWT             *helpers.JWTManager
	Admin           AdminPolicy
	Notifier        Notifier
	Provider        FederatedProvider
	Redis           *redis.Client
	Logger          *logrus.Logger
	ES              *elasticsearch.Client
	ESAccountsIndex string
	GCS             *storage.Client
	GCSBucket       string

	PasswordTTL  time.Duration
	FederatedTTL time.Duration

	// Now is the clock used for code issuance and expiry checks.
	Now func() time.Time
}

func NewService(
	repo repo.AccountRepository,
	jwt *helpers.JWTManager,
	admin AdminPolicy,
	notifier Notifier,
	provider FederatedProvider,
	rdb *redis.Client,
	logger *logrus.Logger,
	es *elasticsearch.Client,
	esAccountsIndex string,
	gcs *storage.Client,
	gcsBucket string,
	passwordTTL, federatedTTL time.Duration,
) *Service {
	return &Service{
		Repo:            repo,
		JWT:             jwt,
		Admin:           admin,
		Notifier:        notifier,
		Provider:        provider,
		Redis:           rdb,
		Logger:          logger,
		ES:              es,
		ESAccountsIndex: esAccountsIndex,
		GCS:             gcs,
		GCSBucket:       gcsBucket,
		PasswordTTL:     passwordTTL,
		FederatedTTL:    federatedTTL,
		Now:             time.Now,
	}
}

// AuthResult is the outcome of an authentication attempt. Exactly one of
// the shapes is populated: a bearer token was issued, a challenge code was
// emailed, or the caller must complete their profile first.
type AuthResult struct {
	Account     *entity.Account
	Token       string
	TokenExpiry time.Time

	// ChallengeSent is true when an MFA code was stored and emailed
	// instead of issuing a token. Delivered reports the email outcome.
	ChallengeSent bool
	Delivered     bool

	// NeedsProfile is true when a federated identity is missing name
	// fields; CompletionToken authorizes the profile-completion step only.
	NeedsProfile    bool
	CompletionToken string
}

func sessionKey(accountID string) string {
	return "account:session:" + accountID
}

func (s *Service) nowRFC3339() string {
	return s.Now().UTC().Format(time.RFC3339Nano)
}

// issueToken generates a bearer token and records a session in Redis.
// There is no server-side revocation; expiry is the only lifecycle control.
func (s *Service) issueToken(ctx context.Context, a *entity.Account, ttl time.Duration) (string, time.Time, error) {
	token, exp, err := s.JWT.Generate(a.ID, string(a.Role), helpers.ScopeAuth, ttl)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", a.ID).Error("generate token failed")
		}
		return "", time.Time{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"account_id": a.ID,
			"email":      a.Email,
			"role":       string(a.Role),
			"name":       a.FullName(),
			"created_at": s.nowRFC3339(),
		}
		key := sessionKey(a.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, ttl)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return token, exp, nil
}

// GetProfile returns the account for the authenticated identity.
func (s *Service) GetProfile(id string) (*entity.Account, error) {
	a, err := s.Repo.GetByID(id)
	if err != nil || a == nil {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

// UploadCV stores an instructor CV artifact in GCS and returns its public
// URL; the URL is what instructor registration references.
func (s *Service) UploadCV(ctx context.Context, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("cv", id+ext))
	return helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
}

func (s *Service) indexAccount(ctx context.Context, a *entity.Account) error {
	if s.ES == nil || s.ESAccountsIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         a.ID,
		"email":      a.Email,
		"name":       a.FullName(),
		"role":       string(a.Role),
		"status":     string(a.Status),
		"verified":   a.Verified,
		"federated":  a.Federated,
		"approval":   string(a.Approval),
		"created_at": a.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": a.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESAccountsIndex, DocumentID: a.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", a.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("account_id", a.ID).Warn("es index response error")
	}
	return nil
}

// SearchAccounts performs a multi_match over email and name for operator
// lookup.
func (s *Service) SearchAccounts(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESAccountsIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESAccountsIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
