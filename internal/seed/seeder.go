package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"promptvault/internal/domain/models/vault"
	vaultSvc "promptvault/internal/domain/services/vault"
	vaultService "promptvault/internal/service/vault"
)

// Seeder writes a Document into one organization. Existing categories and
// tags (by slug), collections (by parent and name) and prompts (by title
// within a collection) are skipped, so running it twice is harmless.
type Seeder struct {
	categories  vaultSvc.CategoryService
	tags        vaultSvc.TagService
	collections vaultSvc.CollectionService
	prompts     vaultSvc.PromptService
	logger      *slog.Logger
}

func NewSeeder(
	categories vaultSvc.CategoryService,
	tags vaultSvc.TagService,
	collections vaultSvc.CollectionService,
	prompts vaultSvc.PromptService,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		categories:  categories,
		tags:        tags,
		collections: collections,
		prompts:     prompts,
		logger:      logger,
	}
}

// Result counts what a run created and skipped.
type Result struct {
	Created int
	Skipped int
}

func (r *Result) add(created bool) {
	if created {
		r.Created++
	} else {
		r.Skipped++
	}
}

// Seed applies doc to the organization, acting as userID.
func (s *Seeder) Seed(ctx context.Context, organizationID, userID string, doc *Document) (*Result, error) {
	result := &Result{}

	categoryIDs, err := s.seedCategories(ctx, organizationID, userID, doc.Categories, result)
	if err != nil {
		return result, err
	}
	if err := s.seedTags(ctx, organizationID, userID, doc.Tags, result); err != nil {
		return result, err
	}
	collectionIDs, err := s.seedCollections(ctx, organizationID, userID, doc.Collections, result)
	if err != nil {
		return result, err
	}
	if err := s.seedPrompts(ctx, organizationID, userID, doc.Prompts, categoryIDs, collectionIDs, result); err != nil {
		return result, err
	}

	return result, nil
}

// seedCategories returns category ids keyed by slug.
func (s *Seeder) seedCategories(ctx context.Context, orgID, userID string, categories []Category, result *Result) (map[string]string, error) {
	existing, err := s.categories.ListCategories(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	ids := make(map[string]string, len(existing))
	for _, c := range existing {
		ids[c.Slug] = c.ID
	}

	for _, c := range categories {
		slug := vaultService.Slugify(c.Name)
		if _, ok := ids[slug]; ok {
			result.add(false)
			continue
		}

		created, err := s.categories.CreateCategory(ctx, &vaultSvc.CreateCategoryRequest{
			OrganizationID: orgID,
			UserID:         userID,
			Name:           c.Name,
			Description:    c.Description,
			Color:          c.Color,
			Icon:           c.Icon,
		})
		if err != nil {
			return nil, fmt.Errorf("create category %q: %w", c.Name, err)
		}
		ids[created.Slug] = created.ID
		result.add(true)
		s.logger.InfoContext(ctx, "category seeded", "name", created.Name, "id", created.ID)
	}

	return ids, nil
}

func (s *Seeder) seedTags(ctx context.Context, orgID, userID string, tags []Tag, result *Result) error {
	existing, err := s.tags.ListTags(ctx, orgID)
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}
	slugs := make(map[string]bool, len(existing))
	for _, t := range existing {
		slugs[t.Slug] = true
	}

	for _, t := range tags {
		if slugs[vaultService.Slugify(t.Name)] {
			result.add(false)
			continue
		}

		created, err := s.tags.CreateTag(ctx, &vaultSvc.CreateTagRequest{
			OrganizationID: orgID,
			UserID:         userID,
			Name:           t.Name,
			Color:          t.Color,
		})
		if err != nil {
			return fmt.Errorf("create tag %q: %w", t.Name, err)
		}
		slugs[created.Slug] = true
		result.add(true)
		s.logger.InfoContext(ctx, "tag seeded", "name", created.Name, "id", created.ID)
	}

	return nil
}

// seedCollections returns collection ids keyed by slash-separated path.
func (s *Seeder) seedCollections(ctx context.Context, orgID, userID string, roots []Collection, result *Result) (map[string]string, error) {
	existing, err := s.collections.ListCollections(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	byParent := make(map[string]string, len(existing))
	for _, c := range existing {
		byParent[childKey(c.ParentID, c.Name)] = c.ID
	}

	paths := make(map[string]string)

	var walk func(parentID *string, parentPath string, nodes []Collection) error
	walk = func(parentID *string, parentPath string, nodes []Collection) error {
		for _, node := range nodes {
			path := node.Name
			if parentPath != "" {
				path = parentPath + "/" + node.Name
			}

			id, ok := byParent[childKey(parentID, node.Name)]
			if ok {
				result.add(false)
			} else {
				created, err := s.collections.CreateCollection(ctx, &vaultSvc.CreateCollectionRequest{
					OrganizationID: orgID,
					UserID:         userID,
					Name:           node.Name,
					Description:    node.Description,
					ParentID:       parentID,
				})
				if err != nil {
					return fmt.Errorf("create collection %q: %w", path, err)
				}
				id = created.ID
				byParent[childKey(parentID, node.Name)] = id
				result.add(true)
				s.logger.InfoContext(ctx, "collection seeded", "path", path, "id", id)
			}

			paths[path] = id
			if err := walk(&id, path, node.Children); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(nil, "", roots); err != nil {
		return nil, err
	}
	return paths, nil
}

func (s *Seeder) seedPrompts(
	ctx context.Context,
	orgID, userID string,
	prompts []Prompt,
	categoryIDs, collectionIDs map[string]string,
	result *Result,
) error {
	for _, p := range prompts {
		var categoryID, collectionID *string
		if p.Category != "" {
			id, ok := categoryIDs[vaultService.Slugify(p.Category)]
			if !ok {
				return fmt.Errorf("prompt %q: unknown category %q", p.Title, p.Category)
			}
			categoryID = &id
		}
		if p.Collection != "" {
			id, ok := collectionIDs[p.Collection]
			if !ok {
				return fmt.Errorf("prompt %q: unknown collection %q", p.Title, p.Collection)
			}
			collectionID = &id
		}

		exists, err := s.promptExists(ctx, orgID, p.Title, collectionID)
		if err != nil {
			return err
		}
		if exists {
			result.add(false)
			continue
		}

		created, err := s.prompts.CreatePrompt(ctx, &vaultSvc.CreatePromptRequest{
			OrganizationID: orgID,
			UserID:         userID,
			Title:          p.Title,
			Description:    p.Description,
			Content:        p.Content,
			Variables:      p.Variables,
			CategoryID:     categoryID,
			CollectionID:   collectionID,
			Tags:           p.Tags,
		})
		if err != nil {
			return fmt.Errorf("create prompt %q: %w", p.Title, err)
		}
		result.add(true)
		s.logger.InfoContext(ctx, "prompt seeded", "title", created.Title, "id", created.ID)
	}
	return nil
}

func (s *Seeder) promptExists(ctx context.Context, orgID, title string, collectionID *string) (bool, error) {
	filter := vault.PromptFilter{OrganizationID: orgID, Search: title}
	if collectionID != nil {
		filter.CollectionID = *collectionID
	}

	items, err := s.prompts.ListPrompts(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("list prompts: %w", err)
	}
	for _, item := range items {
		if strings.EqualFold(item.Title, strings.TrimSpace(title)) {
			return true, nil
		}
	}
	return false, nil
}

func childKey(parentID *string, name string) string {
	parent := ""
	if parentID != nil {
		parent = *parentID
	}
	return parent + "\x00" + strings.ToLower(strings.TrimSpace(name))
}
