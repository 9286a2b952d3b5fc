package vault_test

import (
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"promptvault/internal/domain"
	"promptvault/internal/domain/models"
	"promptvault/internal/domain/models/vault"
	vaultSvc "promptvault/internal/domain/services/vault"
)

var _ = Describe("APIKeyService", func() {
	var (
		ctx context.Context
		f   *fixture
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = newFixture()
	})

	create := func(name string, expiresAt *string) (*vaultSvc.CreatedAPIKey, error) {
		return f.apiKeys.CreateAPIKey(ctx, &vaultSvc.CreateAPIKeyRequest{
			OrganizationID: f.orgID,
			UserID:         f.userID,
			Name:           name,
			ExpiresAt:      expiresAt,
		})
	}

	Describe("CreateAPIKey", func() {
		It("returns the full secret exactly once", func() {
			created, err := create("CI", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Key).To(MatchRegexp(`^pk_test_[0-9a-f]{64}$`))
			Expect(created.Message).To(ContainSubstring("will not be shown again"))
			Expect(created.ExpiresAt).To(BeNil())

			keys, err := f.apiKeys.ListAPIKeys(ctx, f.orgID)
			Expect(err).NotTo(HaveOccurred())
			Expect(keys).To(HaveLen(1))
			Expect(keys[0].Key).To(Equal(created.Key[:8] + "..." + created.Key[len(created.Key)-4:]))
			Expect(keys[0].Key).NotTo(ContainSubstring(created.Key[8 : len(created.Key)-4]))
		})

		It("generates a different secret every time", func() {
			first, err := create("one", nil)
			Expect(err).NotTo(HaveOccurred())
			second, err := create("two", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Key).NotTo(Equal(second.Key))
		})

		It("records a masked key in the activity log", func() {
			created, err := create("CI", nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(f.store.activities).To(HaveLen(1))
			entry := f.store.activities[0]
			Expect(entry.Action).To(Equal(vault.ActionAPIKeyCreated))
			Expect(entry.Metadata["key"]).To(Equal(vault.MaskSecret(created.Key)))
		})

		It("rejects an expiry in the past", func() {
			past := time.Now().Add(-time.Hour).Format(time.RFC3339)
			_, err := create("CI", &past)
			Expect(err).To(MatchError(domain.ErrValidation))
		})

		It("rejects a malformed expiry", func() {
			_, err := create("CI", strPtr("next tuesday"))
			Expect(err).To(MatchError(domain.ErrValidation))
		})

		It("rejects a blank name", func() {
			_, err := create("  ", nil)
			Expect(err).To(MatchError(domain.ErrValidation))
		})
	})

	Describe("Authenticate", func() {
		It("resolves a key to its creator and organization", func() {
			created, err := create("CI", nil)
			Expect(err).NotTo(HaveOccurred())

			identity, err := f.apiKeys.Authenticate(ctx, created.Key)
			Expect(err).NotTo(HaveOccurred())
			Expect(identity.UserID).To(Equal(f.userID))
			Expect(identity.OrganizationID).To(Equal(f.orgID))
			Expect(identity.Method).To(Equal(models.AuthMethodAPIKey))
			Expect(identity.APIKeyID).To(Equal(created.ID))
			Expect(identity.Tenant).To(Equal(models.OrganizationTenant("org_acme")))
			Expect(f.store.touchCalls).To(Equal(1))
		})

		It("rejects an unknown key", func() {
			_, err := f.apiKeys.Authenticate(ctx, "pk_test_"+strings.Repeat("0", 64))
			Expect(err).To(MatchError(domain.ErrUnauthorized))
		})

		It("rejects an expired key", func() {
			future := time.Now().Add(time.Hour).Format(time.RFC3339)
			created, err := create("CI", &future)
			Expect(err).NotTo(HaveOccurred())

			past := time.Now().Add(-time.Minute)
			f.store.apiKeys[created.ID].ExpiresAt = &past

			_, err = f.apiKeys.Authenticate(ctx, created.Key)
			Expect(err).To(MatchError(domain.ErrUnauthorized))
			Expect(err.Error()).To(Equal("API key has expired"))
			Expect(f.store.touchCalls).To(Equal(0))
		})
	})

	Describe("DeleteAPIKey", func() {
		It("revokes the key", func() {
			created, err := create("CI", nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(f.apiKeys.DeleteAPIKey(ctx, f.orgID, f.userID, created.ID)).To(Succeed())

			_, err = f.apiKeys.Authenticate(ctx, created.Key)
			Expect(err).To(MatchError(domain.ErrUnauthorized))
		})

		It("denies deleting another organization's key", func() {
			created, err := create("CI", nil)
			Expect(err).NotTo(HaveOccurred())

			err = f.apiKeys.DeleteAPIKey(ctx, f.otherOrgID, f.otherUser, created.ID)
			Expect(err).To(MatchError(domain.ErrForbidden))
		})
	})
})
