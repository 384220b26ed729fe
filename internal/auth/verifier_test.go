package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/eygar/payment-service/internal"
	"github.com/eygar/payment-service/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

var _ = Describe("RemoteVerifier", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("when the identity service accepts the token", func() {
		It("should return the resolved identity", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/profile/"))
				Expect(r.Header.Get("Authorization")).To(Equal("Bearer good-token"))
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"id": 42, "email": "guest@example.com", "first_name": "Ada", "is_active": true, "is_verified": true}`))
			}))
			defer server.Close()

			verifier := auth.NewRemoteVerifier(server.URL, 2*time.Second)

			identity, err := verifier.Verify(ctx, "good-token")

			Expect(err).ToNot(HaveOccurred())
			Expect(identity.ID).To(Equal("42"))
			Expect(identity.Email).To(Equal("guest@example.com"))
			Expect(identity.FirstName).To(Equal("Ada"))
			Expect(identity.IsActive).To(BeTrue())
			Expect(identity.IsVerified).To(BeTrue())
		})

		It("should treat a missing is_active as active", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"id": "u-7", "email": "guest@example.com"}`))
			}))
			defer server.Close()

			verifier := auth.NewRemoteVerifier(server.URL, 2*time.Second)

			identity, err := verifier.Verify(ctx, "good-token")

			Expect(err).ToNot(HaveOccurred())
			Expect(identity.ID).To(Equal("u-7"))
			Expect(identity.IsActive).To(BeTrue())
			Expect(identity.IsStaff).To(BeFalse())
		})

		It("should accept both numeric and string ids", func() {
			bodies := []string{
				`{"id": 1001, "email": "guest@example.com"}`,
				`{"id": "1001", "email": "guest@example.com"}`,
			}
			for _, body := range bodies {
				payload := body
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte(payload))
				}))

				verifier := auth.NewRemoteVerifier(server.URL, 2*time.Second)
				identity, err := verifier.Verify(ctx, "good-token")
				server.Close()

				Expect(err).ToNot(HaveOccurred())
				Expect(identity.ID).To(Equal("1001"))
			}
		})
	})

	Context("when the identity service rejects the token", func() {
		It("should map 401 to the invalid-token error", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			verifier := auth.NewRemoteVerifier(server.URL, 2*time.Second)

			identity, err := verifier.Verify(ctx, "bad-token")

			Expect(identity).To(BeNil())
			Expect(err).To(Equal(internal.ErrInvalidToken))
		})

		It("should map any other non-200 to the credentials error", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			verifier := auth.NewRemoteVerifier(server.URL, 2*time.Second)

			identity, err := verifier.Verify(ctx, "any-token")

			Expect(identity).To(BeNil())
			Expect(err).To(Equal(internal.ErrBadCredentials))
		})

		It("should map an unparseable profile body to the credentials error", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			}))
			defer server.Close()

			verifier := auth.NewRemoteVerifier(server.URL, 2*time.Second)

			_, err := verifier.Verify(ctx, "any-token")

			Expect(err).To(Equal(internal.ErrBadCredentials))
		})
	})

	Context("when the identity service is unreachable", func() {
		It("should map a timeout to the timeout error", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
			}))
			defer server.Close()

			verifier := auth.NewRemoteVerifier(server.URL, 50*time.Millisecond)

			identity, err := verifier.Verify(ctx, "slow-token")

			Expect(identity).To(BeNil())
			Expect(err).To(Equal(internal.ErrAuthTimeout))
		})

		It("should map a connection failure to the unavailable error", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			serverURL := server.URL
			server.Close()

			verifier := auth.NewRemoteVerifier(serverURL, 2*time.Second)

			identity, err := verifier.Verify(ctx, "any-token")

			Expect(identity).To(BeNil())
			Expect(err).To(Equal(internal.ErrAuthUnavailable))
		})
	})
})

var _ = Describe("LocalVerifier", func() {
	var (
		verifier *auth.LocalVerifier
		ctx      context.Context
	)

	cfg := internal.AuthConfig{
		Mode:          internal.AuthModeLocal,
		SecretKey:     "test-secret",
		Algorithm:     "HS256",
		TokenLifetime: time.Hour,
	}

	BeforeEach(func() {
		verifier = auth.NewLocalVerifier(cfg)
		ctx = context.Background()
	})

	It("should round-trip a minted token", func() {
		token, err := verifier.GenerateToken("user-9", "guest@example.com")
		Expect(err).ToNot(HaveOccurred())

		identity, err := verifier.Verify(ctx, token)

		Expect(err).ToNot(HaveOccurred())
		Expect(identity.ID).To(Equal("user-9"))
		Expect(identity.Email).To(Equal("guest@example.com"))
		Expect(identity.IsActive).To(BeTrue())
	})

	It("should accept the subject claim when user_id is absent", func() {
		claims := jwt.MapClaims{
			"sub": "subject-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SecretKey))
		Expect(err).ToNot(HaveOccurred())

		identity, err := verifier.Verify(ctx, token)

		Expect(err).ToNot(HaveOccurred())
		Expect(identity.ID).To(Equal("subject-1"))
	})

	It("should reject a token signed with a different secret", func() {
		other := auth.NewLocalVerifier(internal.AuthConfig{
			SecretKey:     "other-secret",
			Algorithm:     "HS256",
			TokenLifetime: time.Hour,
		})
		token, err := other.GenerateToken("user-9", "")
		Expect(err).ToNot(HaveOccurred())

		identity, err := verifier.Verify(ctx, token)

		Expect(identity).To(BeNil())
		Expect(err).To(Equal(internal.ErrBadCredentials))
	})

	It("should reject an expired token", func() {
		claims := jwt.MapClaims{
			"user_id": "user-9",
			"exp":     time.Now().Add(-time.Minute).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SecretKey))
		Expect(err).ToNot(HaveOccurred())

		_, err = verifier.Verify(ctx, token)

		Expect(err).To(Equal(internal.ErrBadCredentials))
	})

	It("should reject garbage input", func() {
		_, err := verifier.Verify(ctx, "definitely-not-a-jwt")

		Expect(err).To(Equal(internal.ErrBadCredentials))
	})

	It("should reject a token without a user claim", func() {
		claims := jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SecretKey))
		Expect(err).ToNot(HaveOccurred())

		_, err = verifier.Verify(ctx, token)

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Message).To(Equal("Invalid token payload"))
	})
})

var _ = Describe("Middleware", func() {
	var (
		verifier   *auth.LocalVerifier
		middleware *auth.Middleware
	)

	BeforeEach(func() {
		verifier = auth.NewLocalVerifier(internal.AuthConfig{
			SecretKey:     "mw-secret",
			Algorithm:     "HS256",
			TokenLifetime: time.Hour,
		})
		middleware = auth.NewMiddleware(verifier, 2*time.Second)
	})

	protected := func() (http.Handler, *bool) {
		reached := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := internal.IdentityFromContext(r.Context())
			Expect(ok).To(BeTrue())
			reached = true
		})
		return middleware.RequireIdentity(next), &reached
	}

	It("should pass a valid bearer token through with identity attached", func() {
		token, err := verifier.GenerateToken("user-1", "guest@example.com")
		Expect(err).ToNot(HaveOccurred())

		handler, reached := protected()
		req := httptest.NewRequest(http.MethodGet, "/payments", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(*reached).To(BeTrue())
	})

	It("should return 401 with WWW-Authenticate when the header is missing", func() {
		handler, reached := protected()
		req := httptest.NewRequest(http.MethodGet, "/payments", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(*reached).To(BeFalse())
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(rec.Header().Get("WWW-Authenticate")).To(Equal("Bearer"))
		Expect(rec.Body.String()).To(ContainSubstring("Not authenticated"))
	})

	It("should return 401 for an invalid token", func() {
		handler, reached := protected()
		req := httptest.NewRequest(http.MethodGet, "/payments", nil)
		req.Header.Set("Authorization", "Bearer nonsense")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		Expect(*reached).To(BeFalse())
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
