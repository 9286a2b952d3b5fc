package vault_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"promptvault/internal/domain"
	"promptvault/internal/domain/models/vault"
	vaultSvc "promptvault/internal/domain/services/vault"
)

var _ = Describe("CollectionService", func() {
	var (
		ctx context.Context
		f   *fixture
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = newFixture()
	})

	move := func(id string, parentID *string) error {
		view, err := f.collections.GetCollection(ctx, f.orgID, id, false)
		Expect(err).NotTo(HaveOccurred())
		req := &vaultSvc.UpdateCollectionRequest{
			OrganizationID: f.orgID,
			UserID:         f.userID,
			Name:           view.Name,
		}
		if parentID == nil {
			req.ParentID = cleared()
		} else {
			req.ParentID = present(*parentID)
		}
		_, err = f.collections.UpdateCollection(ctx, id, req)
		return err
	}

	Describe("CreateCollection", func() {
		It("creates a root collection and records the activity", func() {
			view := f.createCollection("  Marketing  ", nil)

			Expect(view.Name).To(Equal("Marketing"))
			Expect(view.ParentID).To(BeNil())
			Expect(view.Parent).To(BeNil())
			Expect(view.PromptCount).To(Equal(0))
			Expect(f.store.actions()).To(ConsistOf(vault.ActionCollectionCreated))
		})

		It("creates a child with a parent summary", func() {
			root := f.createCollection("Root", nil)
			child := f.createCollection("Child", &root.ID)

			Expect(child.ParentID).To(HaveValue(Equal(root.ID)))
			Expect(child.Parent).NotTo(BeNil())
			Expect(child.Parent.Name).To(Equal("Root"))

			parent, err := f.collections.GetCollection(ctx, f.orgID, root.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(parent.ChildrenCount).To(Equal(1))
		})

		It("rejects a blank name", func() {
			_, err := f.collections.CreateCollection(ctx, &vaultSvc.CreateCollectionRequest{
				OrganizationID: f.orgID,
				UserID:         f.userID,
				Name:           "   ",
			})
			Expect(err).To(MatchError(domain.ErrValidation))
			Expect(f.store.actions()).To(BeEmpty())
		})

		It("rejects a parent from another organization", func() {
			foreign := f.createCollectionIn(f.otherOrgID, "Foreign", nil)

			_, err := f.collections.CreateCollection(ctx, &vaultSvc.CreateCollectionRequest{
				OrganizationID: f.orgID,
				UserID:         f.userID,
				Name:           "Child",
				ParentID:       &foreign.ID,
			})
			Expect(err).To(MatchError(domain.ErrForbidden))
		})

		It("returns not found for an unknown parent", func() {
			missing := "00000000-0000-0000-0000-999999999999"
			_, err := f.collections.CreateCollection(ctx, &vaultSvc.CreateCollectionRequest{
				OrganizationID: f.orgID,
				UserID:         f.userID,
				Name:           "Child",
				ParentID:       &missing,
			})
			Expect(err).To(MatchError(domain.ErrNotFound))
		})
	})

	Describe("UpdateCollection", func() {
		It("rejects making a collection its own parent", func() {
			a := f.createCollection("A", nil)

			err := move(a.ID, &a.ID)
			Expect(err).To(MatchError(domain.ErrConflict))

			stored, err := f.collections.GetCollection(ctx, f.orgID, a.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ParentID).To(BeNil())
		})

		It("rejects moving a collection under its own descendant", func() {
			a := f.createCollection("A", nil)
			b := f.createCollection("B", &a.ID)
			c := f.createCollection("C", &b.ID)

			Expect(move(a.ID, &b.ID)).To(MatchError(domain.ErrConflict))
			Expect(move(a.ID, &c.ID)).To(MatchError(domain.ErrConflict))

			stored, err := f.collections.GetCollection(ctx, f.orgID, a.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ParentID).To(BeNil())
		})

		It("moves a collection under a sibling and back to the root", func() {
			a := f.createCollection("A", nil)
			b := f.createCollection("B", nil)

			Expect(move(b.ID, &a.ID)).To(Succeed())
			moved, err := f.collections.GetCollection(ctx, f.orgID, b.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(moved.ParentID).To(HaveValue(Equal(a.ID)))
			Expect(f.store.lockTreeCalls).To(Equal(1))

			Expect(move(b.ID, nil)).To(Succeed())
			moved, err = f.collections.GetCollection(ctx, f.orgID, b.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(moved.ParentID).To(BeNil())
		})

		It("leaves the parent unchanged when the field is absent", func() {
			a := f.createCollection("A", nil)
			b := f.createCollection("B", &a.ID)

			view, err := f.collections.UpdateCollection(ctx, b.ID, &vaultSvc.UpdateCollectionRequest{
				OrganizationID: f.orgID,
				UserID:         f.userID,
				Name:           "Renamed",
				Description:    present("notes"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(view.Name).To(Equal("Renamed"))
			Expect(view.Description).To(HaveValue(Equal("notes")))
			Expect(view.ParentID).To(HaveValue(Equal(a.ID)))
			Expect(f.store.lockTreeCalls).To(Equal(0))
		})

		It("rejects moving into another organization's collection", func() {
			a := f.createCollection("A", nil)
			foreign := f.createCollectionIn(f.otherOrgID, "Foreign", nil)

			Expect(move(a.ID, &foreign.ID)).To(MatchError(domain.ErrForbidden))
		})

		It("denies updates to another organization's collection", func() {
			foreign := f.createCollectionIn(f.otherOrgID, "Foreign", nil)

			_, err := f.collections.UpdateCollection(ctx, foreign.ID, &vaultSvc.UpdateCollectionRequest{
				OrganizationID: f.orgID,
				UserID:         f.userID,
				Name:           "Hijacked",
			})
			Expect(err).To(MatchError(domain.ErrForbidden))
		})
	})

	Describe("DeleteCollection", func() {
		It("refuses to delete a collection with children", func() {
			a := f.createCollection("A", nil)
			f.createCollection("B", &a.ID)

			err := f.collections.DeleteCollection(ctx, f.orgID, f.userID, a.ID)
			Expect(err).To(MatchError(domain.ErrConflict))
			Expect(err.Error()).To(ContainSubstring("1 child collection(s)"))

			_, err = f.collections.GetCollection(ctx, f.orgID, a.ID, false)
			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses to delete a collection that holds prompts", func() {
			a := f.createCollection("A", nil)
			_, err := f.prompts.CreatePrompt(ctx, &vaultSvc.CreatePromptRequest{
				OrganizationID: f.orgID,
				UserID:         f.userID,
				Title:          "Greeting",
				Content:        "Say hello",
				CollectionID:   &a.ID,
			})
			Expect(err).NotTo(HaveOccurred())

			err = f.collections.DeleteCollection(ctx, f.orgID, f.userID, a.ID)
			Expect(err).To(MatchError(domain.ErrConflict))
			Expect(err.Error()).To(ContainSubstring("1 prompt(s)"))
		})

		It("deletes an empty leaf and records the activity first", func() {
			a := f.createCollection("A", nil)

			Expect(f.collections.DeleteCollection(ctx, f.orgID, f.userID, a.ID)).To(Succeed())

			_, err := f.collections.GetCollection(ctx, f.orgID, a.ID, false)
			Expect(err).To(MatchError(domain.ErrNotFound))
			Expect(f.store.actions()).To(Equal([]vault.ActivityAction{
				vault.ActionCollectionCreated,
				vault.ActionCollectionDeleted,
			}))
		})

		It("denies deleting another organization's collection", func() {
			foreign := f.createCollectionIn(f.otherOrgID, "Foreign", nil)

			err := f.collections.DeleteCollection(ctx, f.orgID, f.userID, foreign.ID)
			Expect(err).To(MatchError(domain.ErrForbidden))
		})
	})

	Describe("GetCollection with descendants", func() {
		It("lists every collection below the node", func() {
			a := f.createCollection("A", nil)
			b := f.createCollection("B", &a.ID)
			c := f.createCollection("C", &b.ID)
			f.createCollection("D", nil)

			view, err := f.collections.GetCollection(ctx, f.orgID, a.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(view.DescendantIDs).To(ConsistOf(b.ID, c.ID))
		})
	})

	Describe("GetTree", func() {
		It("nests collections and keeps organizations apart", func() {
			a := f.createCollection("A", nil)
			f.createCollection("B", &a.ID)
			f.createCollectionIn(f.otherOrgID, "Foreign", nil)

			tree, err := f.collections.GetTree(ctx, f.orgID)
			Expect(err).NotTo(HaveOccurred())
			Expect(tree).To(HaveLen(1))
			Expect(tree[0].Name).To(Equal("A"))
			Expect(tree[0].Children).To(HaveLen(1))
			Expect(tree[0].Children[0].Name).To(Equal("B"))
		})
	})
})
