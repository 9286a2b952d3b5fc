package vault_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"promptvault/internal/config"
	"promptvault/internal/domain"
	"promptvault/internal/domain/models/vault"
	vaultSvc "promptvault/internal/domain/services/vault"
)

func tagNames(tags []vault.TagSummary) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

var _ = Describe("PromptService", func() {
	var (
		ctx context.Context
		f   *fixture
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = newFixture()
	})

	update := func(id string, req *vaultSvc.UpdatePromptRequest) (*vault.PromptDetail, error) {
		req.OrganizationID = f.orgID
		req.UserID = f.userID
		return f.prompts.UpdatePrompt(ctx, id, req)
	}

	Describe("CreatePrompt", func() {
		It("stores a draft with version 1 and its tags", func() {
			detail := f.createPrompt("  Summarize  ", "  Summarize {{text}}  ", "Writing", "ops")

			Expect(detail.Title).To(Equal("Summarize"))
			Expect(detail.Content).To(Equal("Summarize {{text}}"))
			Expect(detail.Status).To(Equal(vault.StatusDraft))
			Expect(detail.Visibility).To(Equal(vault.VisibilityPrivate))
			Expect(detail.VersionCount).To(Equal(1))
			Expect(detail.Versions).To(HaveLen(1))
			Expect(detail.Versions[0].Version).To(Equal(1))
			Expect(detail.Versions[0].Content).To(Equal(detail.Content))
			Expect(detail.Versions[0].ChangeDescription).To(HaveValue(Equal(vaultSvc.InitialVersionNote)))
			Expect(tagNames(detail.Tags)).To(ConsistOf("Writing", "ops"))
			Expect(detail.Author.Name).To(Equal("Ada Lovelace"))
			Expect(f.store.actions()).To(ConsistOf(vault.ActionPromptCreated))
		})

		It("collapses tag names that differ only in case and skips blanks", func() {
			detail := f.createPrompt("Title", "Body", "Customer Support", "customer support", "  ")

			Expect(detail.Tags).To(HaveLen(1))
			Expect(detail.Tags[0].Name).To(Equal("Customer Support"))
			Expect(detail.Tags[0].Slug).To(Equal("customer-support"))
		})

		It("keeps tags whose names differ in punctuation or script", func() {
			detail := f.createPrompt("Title", "Body", "C++", "C#", "日本語")

			Expect(tagNames(detail.Tags)).To(ConsistOf("C++", "C#", "日本語"))
			slugs := []string{}
			for _, t := range detail.Tags {
				slugs = append(slugs, t.Slug)
			}
			Expect(slugs).To(ConsistOf("c++", "c#", "日本語"))
		})

		It("reuses an existing tag regardless of case", func() {
			first := f.createPrompt("One", "Body", "Writing")
			second := f.createPrompt("Two", "Body", "writing")

			Expect(second.Tags).To(HaveLen(1))
			Expect(second.Tags[0].ID).To(Equal(first.Tags[0].ID))
			Expect(f.store.tags).To(HaveLen(1))
		})

		It("rejects a new tag whose slug belongs to a differently named tag", func() {
			_, err := f.prompts.CreatePrompt(ctx, &vaultSvc.CreatePromptRequest{
				OrganizationID: f.orgID,
				UserID:         f.userID,
				Title:          "Title",
				Content:        "Body",
				Tags:           []string{"Customer Support", "customer-support"},
			})
			Expect(err).To(MatchError(domain.ErrConflict))
			Expect(f.store.prompts).To(BeEmpty())
			Expect(f.store.versions).To(BeEmpty())
			Expect(f.store.tags).To(BeEmpty())
			Expect(f.store.promptTags).To(BeEmpty())
		})

		It("rejects an overlong tag name before writing anything", func() {
			_, err := f.prompts.CreatePrompt(ctx, &vaultSvc.CreatePromptRequest{
				OrganizationID: f.orgID,
				UserID:         f.userID,
				Title:          "Title",
				Content:        "Body",
				Tags:           []string{"ok", strings.Repeat("x", config.MaxNameLength+1)},
			})
			Expect(err).To(MatchError(domain.ErrValidation))
			Expect(f.tx.calls).To(Equal(0))
			Expect(f.store.prompts).To(BeEmpty())
			Expect(f.store.tags).To(BeEmpty())
		})

		It("rolls back the prompt, its first version and tag links when the activity log fails", func() {
			f.store.failActivity = vault.ActionPromptCreated

			_, err := f.prompts.CreatePrompt(ctx, &vaultSvc.CreatePromptRequest{
				OrganizationID: f.orgID,
				UserID:         f.userID,
				Title:          "Title",
				Content:        "Body",
				Tags:           []string{"alpha", "beta"},
			})
			Expect(err).To(HaveOccurred())
			Expect(f.tx.rollbacks).To(Equal(1))
			Expect(f.store.prompts).To(BeEmpty())
			Expect(f.store.versions).To(BeEmpty())
			Expect(f.store.tags).To(BeEmpty())
			Expect(f.store.promptTags).To(BeEmpty())
			Expect(f.store.activities).To(BeEmpty())

			items, err := f.prompts.ListPrompts(ctx, vault.PromptFilter{OrganizationID: f.orgID})
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})

		It("rejects missing content without writing anything", func() {
			_, err := f.prompts.CreatePrompt(ctx, &vaultSvc.CreatePromptRequest{
				OrganizationID: f.orgID,
				UserID:         f.userID,
				Title:          "Title",
				Content:        "   ",
			})
			Expect(err).To(MatchError(domain.ErrValidation))
			Expect(f.store.prompts).To(BeEmpty())
			Expect(f.store.actions()).To(BeEmpty())
		})

		It("rejects an unknown visibility", func() {
			visibility := "PUBLIC"
			_, err := f.prompts.CreatePrompt(ctx, &vaultSvc.CreatePromptRequest{
				OrganizationID: f.orgID,
				UserID:         f.userID,
				Title:          "Title",
				Content:        "Body",
				Visibility:     &visibility,
			})
			Expect(err).To(MatchError(domain.ErrValidation))
		})

		It("rejects a collection from another organization", func() {
			foreign := f.createCollectionIn(f.otherOrgID, "Foreign", nil)

			_, err := f.prompts.CreatePrompt(ctx, &vaultSvc.CreatePromptRequest{
				OrganizationID: f.orgID,
				UserID:         f.userID,
				Title:          "Title",
				Content:        "Body",
				CollectionID:   &foreign.ID,
			})
			Expect(err).To(MatchError(domain.ErrForbidden))
			Expect(f.store.prompts).To(BeEmpty())
		})
	})

	Describe("UpdatePrompt", func() {
		var prompt *vault.PromptDetail

		BeforeEach(func() {
			prompt = f.createPrompt("Greeting", "Say hello")
		})

		It("appends version 2 when the content changes", func() {
			content := "Say hello politely"
			note := "More polite"

			detail, err := update(prompt.ID, &vaultSvc.UpdatePromptRequest{Content: &content, ChangeNote: &note})
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Content).To(Equal(content))
			Expect(detail.VersionCount).To(Equal(2))
			Expect(detail.Versions[0].Version).To(Equal(2))
			Expect(detail.Versions[0].Content).To(Equal(content))
			Expect(detail.Versions[0].ChangeDescription).To(HaveValue(Equal(note)))
			Expect(f.store.forUpdateCalls).To(Equal(1))
		})

		It("uses the default change note", func() {
			content := "Say hi"

			detail, err := update(prompt.ID, &vaultSvc.UpdatePromptRequest{Content: &content})
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Versions[0].ChangeDescription).To(HaveValue(Equal(vaultSvc.DefaultChangeNote)))
		})

		It("does not version a title-only change", func() {
			title := "Hello"

			detail, err := update(prompt.ID, &vaultSvc.UpdatePromptRequest{Title: &title})
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Title).To(Equal("Hello"))
			Expect(f.store.versionNumbers(prompt.ID)).To(Equal([]int{1}))
		})

		It("does not version content that is equal after trimming", func() {
			content := "  Say hello \n"

			_, err := update(prompt.ID, &vaultSvc.UpdatePromptRequest{Content: &content})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.store.versionNumbers(prompt.ID)).To(Equal([]int{1}))
		})

		It("keeps version numbers dense across updates", func() {
			for _, content := range []string{"one", "two", "two", "three"} {
				c := content
				_, err := update(prompt.ID, &vaultSvc.UpdatePromptRequest{Content: &c})
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(f.store.versionNumbers(prompt.ID)).To(Equal([]int{1, 2, 3, 4}))

			versions, err := f.prompts.ListVersions(ctx, f.orgID, prompt.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(versions[0].Content).To(Equal("three"))
		})

		It("replaces the whole tag set", func() {
			tags := []string{"alpha", "beta"}
			_, err := update(prompt.ID, &vaultSvc.UpdatePromptRequest{Tags: &tags})
			Expect(err).NotTo(HaveOccurred())

			tags = []string{"gamma"}
			detail, err := update(prompt.ID, &vaultSvc.UpdatePromptRequest{Tags: &tags})
			Expect(err).NotTo(HaveOccurred())
			Expect(tagNames(detail.Tags)).To(ConsistOf("gamma"))
		})

		It("clears all tags with an empty list", func() {
			tags := []string{"alpha"}
			_, err := update(prompt.ID, &vaultSvc.UpdatePromptRequest{Tags: &tags})
			Expect(err).NotTo(HaveOccurred())

			empty := []string{}
			detail, err := update(prompt.ID, &vaultSvc.UpdatePromptRequest{Tags: &empty})
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Tags).To(BeEmpty())
		})

		It("clears the category with an explicit null", func() {
			category, err := f.categories.CreateCategory(ctx, &vaultSvc.CreateCategoryRequest{
				OrganizationID: f.orgID,
				UserID:         f.userID,
				Name:           "Support",
			})
			Expect(err).NotTo(HaveOccurred())

			detail, err := update(prompt.ID, &vaultSvc.UpdatePromptRequest{CategoryID: present(category.ID)})
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Category).NotTo(BeNil())
			Expect(detail.Category.Name).To(Equal("Support"))

			detail, err = update(prompt.ID, &vaultSvc.UpdatePromptRequest{CategoryID: cleared()})
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.CategoryID).To(BeNil())
			Expect(detail.Category).To(BeNil())
		})

		It("leaves the prompt untouched when the activity log fails", func() {
			tags := []string{"alpha"}
			_, err := update(prompt.ID, &vaultSvc.UpdatePromptRequest{Tags: &tags})
			Expect(err).NotTo(HaveOccurred())

			f.store.failActivity = vault.ActionPromptUpdated
			content := "Say hello again"
			replacement := []string{"gamma"}
			_, err = update(prompt.ID, &vaultSvc.UpdatePromptRequest{Content: &content, Tags: &replacement})
			Expect(err).To(HaveOccurred())

			f.store.failActivity = ""
			detail, err := f.prompts.GetPrompt(ctx, f.orgID, f.userID, prompt.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Content).To(Equal("Say hello"))
			Expect(tagNames(detail.Tags)).To(ConsistOf("alpha"))
			Expect(f.store.versionNumbers(prompt.ID)).To(Equal([]int{1}))
			Expect(f.store.tags).To(HaveLen(1))
		})

		It("rejects an overlong replacement tag before writing anything", func() {
			content := "Say hello again"
			tags := []string{strings.Repeat("x", config.MaxNameLength+1)}
			calls := f.tx.calls

			_, err := update(prompt.ID, &vaultSvc.UpdatePromptRequest{Content: &content, Tags: &tags})
			Expect(err).To(MatchError(domain.ErrValidation))
			Expect(f.tx.calls).To(Equal(calls))
			Expect(f.store.versionNumbers(prompt.ID)).To(Equal([]int{1}))
		})

		It("rejects an unknown status", func() {
			status := "DELETED"
			_, err := update(prompt.ID, &vaultSvc.UpdatePromptRequest{Status: &status})
			Expect(err).To(MatchError(domain.ErrValidation))
		})

		It("denies updates from another organization", func() {
			title := "Hijacked"
			_, err := f.prompts.UpdatePrompt(ctx, prompt.ID, &vaultSvc.UpdatePromptRequest{
				OrganizationID: f.otherOrgID,
				UserID:         f.otherUser,
				Title:          &title,
			})
			Expect(err).To(MatchError(domain.ErrForbidden))
		})
	})

	Describe("ListPrompts", func() {
		BeforeEach(func() {
			f.createPrompt("Code review", "Review this diff", "Engineering")
			f.createPrompt("Cold email", "Write an outreach email", "Sales")
			f.createPrompt("Bug triage", "Classify the bug report", "engineering", "Support")
		})

		It("filters by tag name case-insensitively", func() {
			items, err := f.prompts.ListPrompts(ctx, vault.PromptFilter{
				OrganizationID: f.orgID,
				Tag:            "ENGINEERING",
			})
			Expect(err).NotTo(HaveOccurred())

			titles := []string{}
			for _, item := range items {
				titles = append(titles, item.Title)
			}
			Expect(titles).To(ConsistOf("Code review", "Bug triage"))
		})

		It("searches title and content case-insensitively", func() {
			items, err := f.prompts.ListPrompts(ctx, vault.PromptFilter{
				OrganizationID: f.orgID,
				Search:         "EMAIL",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].Title).To(Equal("Cold email"))
		})

		It("never returns another organization's prompts", func() {
			items, err := f.prompts.ListPrompts(ctx, vault.PromptFilter{OrganizationID: f.otherOrgID})
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(BeEmpty())
		})

		It("rejects an unknown status filter", func() {
			_, err := f.prompts.ListPrompts(ctx, vault.PromptFilter{
				OrganizationID: f.orgID,
				Status:         "BOGUS",
			})
			Expect(err).To(MatchError(domain.ErrValidation))
		})
	})

	Describe("DeletePrompt", func() {
		It("removes the prompt and its history", func() {
			prompt := f.createPrompt("Greeting", "Say hello", "misc")

			Expect(f.prompts.DeletePrompt(ctx, f.orgID, f.userID, prompt.ID)).To(Succeed())

			_, err := f.prompts.GetPrompt(ctx, f.orgID, f.userID, prompt.ID)
			Expect(err).To(MatchError(domain.ErrNotFound))
			Expect(f.store.versionNumbers(prompt.ID)).To(BeEmpty())
			Expect(f.store.actions()).To(ContainElement(vault.ActionPromptDeleted))
		})
	})

	Describe("CommentService", func() {
		It("adds comments newest first with the author attached", func() {
			prompt := f.createPrompt("Greeting", "Say hello")

			for _, content := range []string{"first", "second"} {
				comment, err := f.comments.AddComment(ctx, &vaultSvc.AddCommentRequest{
					OrganizationID: f.orgID,
					UserID:         f.userID,
					PromptID:       prompt.ID,
					Content:        content,
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(comment.Author).NotTo(BeNil())
				Expect(comment.Author.Email).To(Equal("ada@example.com"))
			}

			comments, err := f.comments.ListComments(ctx, f.orgID, prompt.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(comments).To(HaveLen(2))
			Expect(comments[0].Content).To(Equal("second"))
		})

		It("rejects a blank comment", func() {
			prompt := f.createPrompt("Greeting", "Say hello")

			_, err := f.comments.AddComment(ctx, &vaultSvc.AddCommentRequest{
				OrganizationID: f.orgID,
				UserID:         f.userID,
				PromptID:       prompt.ID,
				Content:        "  ",
			})
			Expect(err).To(MatchError(domain.ErrValidation))
		})
	})
})
