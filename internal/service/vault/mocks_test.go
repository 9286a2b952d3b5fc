package vault_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"promptvault/internal/domain"
	"promptvault/internal/domain/models"
	"promptvault/internal/domain/models/vault"
	"promptvault/internal/domain/repositories"
	vaultRepo "promptvault/internal/domain/repositories/vault"
	vaultSvc "promptvault/internal/domain/services/vault"
	serviceAuth "promptvault/internal/service/auth"
	vaultService "promptvault/internal/service/vault"
)

func notFound(resource, id string) error {
	return fmt.Errorf("%s %s: %w", resource, id, domain.ErrNotFound)
}

func strPtr(s string) *string { return &s }

func present(s string) models.OptionalString {
	return models.OptionalString{Present: true, Value: &s}
}

func cleared() models.OptionalString {
	return models.OptionalString{Present: true}
}

type favoriteKey struct{ userID, promptID string }

// memStore is a shared in-memory database behind every fake repository,
// so counts and cascades behave like the real schema.
type memStore struct {
	mu  sync.Mutex
	seq int

	orgs        map[string]*models.Organization
	users       map[string]*models.User
	collections map[string]*vault.Collection
	prompts     map[string]*vault.Prompt
	versions    []vault.PromptVersion
	comments    []vault.Comment
	favorites   map[favoriteKey]time.Time
	tags        map[string]*vault.Tag
	promptTags  map[string]map[string]bool
	categories  map[string]*vault.Category
	apiKeys     map[string]*vault.APIKey
	activities  []vault.Activity

	lockTreeCalls  int
	forUpdateCalls int
	touchCalls     int

	// failActivity makes recording this action fail
	failActivity vault.ActivityAction
}

func newMemStore() *memStore {
	return &memStore{
		orgs:        map[string]*models.Organization{},
		users:       map[string]*models.User{},
		collections: map[string]*vault.Collection{},
		prompts:     map[string]*vault.Prompt{},
		favorites:   map[favoriteKey]time.Time{},
		tags:        map[string]*vault.Tag{},
		promptTags:  map[string]map[string]bool{},
		categories:  map[string]*vault.Category{},
		apiKeys:     map[string]*vault.APIKey{},
	}
}

func (s *memStore) nextID() string {
	s.seq++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", s.seq)
}

func (s *memStore) actions() []vault.ActivityAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]vault.ActivityAction, len(s.activities))
	for i, a := range s.activities {
		out[i] = a.Action
	}
	return out
}

func (s *memStore) favoriteRows(promptID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.favorites {
		if k.promptID == promptID {
			n++
		}
	}
	return n
}

func (s *memStore) versionNumbers(promptID string) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for _, v := range s.versions {
		if v.PromptID == promptID {
			out = append(out, v.Version)
		}
	}
	sort.Ints(out)
	return out
}

// snapshot deep-copies every table so a failed unit of work can be undone.
func (s *memStore) snapshot() *memStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	promptTags := make(map[string]map[string]bool, len(s.promptTags))
	for id, set := range s.promptTags {
		promptTags[id] = maps.Clone(set)
	}
	return &memStore{
		orgs:        cloneRows(s.orgs),
		users:       cloneRows(s.users),
		collections: cloneRows(s.collections),
		prompts:     cloneRows(s.prompts),
		versions:    slices.Clone(s.versions),
		comments:    slices.Clone(s.comments),
		favorites:   maps.Clone(s.favorites),
		tags:        cloneRows(s.tags),
		promptTags:  promptTags,
		categories:  cloneRows(s.categories),
		apiKeys:     cloneRows(s.apiKeys),
		activities:  slices.Clone(s.activities),
	}
}

// restore puts the tables of snap back. Counters and the id sequence keep
// running.
func (s *memStore) restore(snap *memStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs = snap.orgs
	s.users = snap.users
	s.collections = snap.collections
	s.prompts = snap.prompts
	s.versions = snap.versions
	s.comments = snap.comments
	s.favorites = snap.favorites
	s.tags = snap.tags
	s.promptTags = snap.promptTags
	s.categories = snap.categories
	s.apiKeys = snap.apiKeys
	s.activities = snap.activities
}

func cloneRows[V any](rows map[string]*V) map[string]*V {
	out := make(map[string]*V, len(rows))
	for id, row := range rows {
		c := *row
		out[id] = &c
	}
	return out
}

// fakeTxManager runs fn inline and rolls the store back when the outermost
// unit of work fails. Nested calls join the outer one.
type fakeTxManager struct {
	store     *memStore
	depth     int
	calls     int
	rollbacks int
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.calls++
	if m.depth > 0 {
		return fn(ctx)
	}

	snap := m.store.snapshot()
	m.depth++
	err := fn(ctx)
	m.depth--
	if err != nil {
		m.rollbacks++
		m.store.restore(snap)
	}
	return err
}

// --- organizations and users ---

type memOrgRepo struct{ s *memStore }

func (r *memOrgRepo) GetByTenant(_ context.Context, tenant models.Tenant) (*models.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orgs {
		if o.Kind == tenant.Kind && o.ExternalID == tenant.ExternalID {
			c := *o
			return &c, nil
		}
	}
	return nil, notFound("organization", tenant.String())
}

func (r *memOrgRepo) GetByID(_ context.Context, id string) (*models.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orgs[id]
	if !ok {
		return nil, notFound("organization", id)
	}
	c := *o
	return &c, nil
}

func (r *memOrgRepo) Create(_ context.Context, org *models.Organization) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orgs {
		if o.Kind == org.Kind && o.ExternalID == org.ExternalID {
			*org = *o
			return false, nil
		}
	}
	org.ID = r.s.nextID()
	c := *org
	r.s.orgs[org.ID] = &c
	return true, nil
}

func (r *memOrgRepo) AddMember(context.Context, *models.Membership) error { return nil }

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Upsert(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ExternalID == user.ExternalID {
			user.ID = u.ID
			c := *user
			r.s.users[u.ID] = &c
			return nil
		}
	}
	user.ID = r.s.nextID()
	c := *user
	r.s.users[user.ID] = &c
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	c := *u
	return &c, nil
}

// --- collections ---

type memCollectionRepo struct{ s *memStore }

func (r *memCollectionRepo) view(c *vault.Collection) vault.CollectionView {
	v := vault.CollectionView{Collection: *c}
	if c.ParentID != nil {
		if p, ok := r.s.collections[*c.ParentID]; ok {
			v.Parent = &vault.CollectionSummary{ID: p.ID, Name: p.Name}
		}
	}
	for _, p := range r.s.prompts {
		if p.CollectionID != nil && *p.CollectionID == c.ID {
			v.PromptCount++
		}
	}
	for _, ch := range r.s.collections {
		if ch.ParentID != nil && *ch.ParentID == c.ID {
			v.ChildrenCount++
		}
	}
	return v
}

func (r *memCollectionRepo) Create(_ context.Context, c *vault.Collection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ParentID != nil {
		if _, ok := r.s.collections[*c.ParentID]; !ok {
			return notFound("parent collection", *c.ParentID)
		}
	}
	c.ID = r.s.nextID()
	cp := *c
	r.s.collections[c.ID] = &cp
	return nil
}

func (r *memCollectionRepo) GetByID(_ context.Context, id string) (*vault.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.collections[id]
	if !ok {
		return nil, notFound("collection", id)
	}
	cp := *c
	return &cp, nil
}

func (r *memCollectionRepo) GetView(_ context.Context, id string) (*vault.CollectionView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.collections[id]
	if !ok {
		return nil, notFound("collection", id)
	}
	v := r.view(c)
	return &v, nil
}

func (r *memCollectionRepo) List(_ context.Context, organizationID string) ([]vault.CollectionView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []vault.CollectionView{}
	for _, c := range r.s.collections {
		if c.OrganizationID == organizationID {
			out = append(out, r.view(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memCollectionRepo) Update(_ context.Context, c *vault.Collection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.collections[c.ID]; !ok {
		return notFound("collection", c.ID)
	}
	cp := *c
	r.s.collections[c.ID] = &cp
	return nil
}

func (r *memCollectionRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.collections[id]; !ok {
		return notFound("collection", id)
	}
	delete(r.s.collections, id)
	return nil
}

func (r *memCollectionRepo) Count(_ context.Context, organizationID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, c := range r.s.collections {
		if c.OrganizationID == organizationID {
			n++
		}
	}
	return n, nil
}

func (r *memCollectionRepo) CountPrompts(_ context.Context, id string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.collections[id]
	if !ok {
		return 0, nil
	}
	return r.view(c).PromptCount, nil
}

func (r *memCollectionRepo) CountChildren(_ context.Context, id string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.collections[id]
	if !ok {
		return 0, nil
	}
	return r.view(c).ChildrenCount, nil
}

func (r *memCollectionRepo) LockTree(context.Context, string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.lockTreeCalls++
	return nil
}

// --- prompts, versions, comments, favorites ---

type memPromptRepo struct{ s *memStore }

func (r *memPromptRepo) Create(_ context.Context, p *vault.Prompt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.nextID()
	cp := *p
	r.s.prompts[p.ID] = &cp
	return nil
}

func (r *memPromptRepo) GetByID(_ context.Context, id string) (*vault.Prompt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prompts[id]
	if !ok {
		return nil, notFound("prompt", id)
	}
	cp := *p
	return &cp, nil
}

func (r *memPromptRepo) GetForUpdate(ctx context.Context, id string) (*vault.Prompt, error) {
	r.s.mu.Lock()
	r.s.forUpdateCalls++
	r.s.mu.Unlock()
	return r.GetByID(ctx, id)
}

func (r *memPromptRepo) Update(_ context.Context, p *vault.Prompt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.prompts[p.ID]
	if !ok {
		return notFound("prompt", p.ID)
	}
	p.FavoriteCount = stored.FavoriteCount
	cp := *p
	r.s.prompts[p.ID] = &cp
	return nil
}

func (r *memPromptRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.prompts[id]; !ok {
		return notFound("prompt", id)
	}
	delete(r.s.prompts, id)
	delete(r.s.promptTags, id)

	versions := r.s.versions[:0]
	for _, v := range r.s.versions {
		if v.PromptID != id {
			versions = append(versions, v)
		}
	}
	r.s.versions = versions

	comments := r.s.comments[:0]
	for _, c := range r.s.comments {
		if c.PromptID != id {
			comments = append(comments, c)
		}
	}
	r.s.comments = comments

	for k := range r.s.favorites {
		if k.promptID == id {
			delete(r.s.favorites, k)
		}
	}
	return nil
}

func (r *memPromptRepo) item(p *vault.Prompt, userID string) vault.PromptListItem {
	item := vault.PromptListItem{Prompt: *p, Tags: []vault.TagSummary{}}
	if u, ok := r.s.users[p.AuthorID]; ok {
		item.Author = u.Summary()
	}
	if p.CategoryID != nil {
		if c, ok := r.s.categories[*p.CategoryID]; ok {
			item.Category = &vault.CategorySummary{ID: c.ID, Name: c.Name, Color: c.Color}
		}
	}
	if p.CollectionID != nil {
		if c, ok := r.s.collections[*p.CollectionID]; ok {
			item.Collection = &vault.CollectionSummary{ID: c.ID, Name: c.Name}
		}
	}
	for _, v := range r.s.versions {
		if v.PromptID == p.ID {
			item.VersionCount++
		}
	}
	for _, c := range r.s.comments {
		if c.PromptID == p.ID {
			item.CommentCount++
		}
	}
	_, item.IsFavorited = r.s.favorites[favoriteKey{userID, p.ID}]
	return item
}

func (r *memPromptRepo) GetListItem(_ context.Context, id, userID string) (*vault.PromptListItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prompts[id]
	if !ok {
		return nil, notFound("prompt", id)
	}
	item := r.item(p, userID)
	return &item, nil
}

func (r *memPromptRepo) List(_ context.Context, f vault.PromptFilter) ([]vault.PromptListItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(f.Search)
	out := []vault.PromptListItem{}
	for _, p := range r.s.prompts {
		if p.OrganizationID != f.OrganizationID {
			continue
		}
		if search != "" {
			desc := ""
			if p.Description != nil {
				desc = *p.Description
			}
			haystack := strings.ToLower(p.Title + "\x00" + desc + "\x00" + p.Content)
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != f.CategoryID) {
			continue
		}
		if f.CollectionID != "" && (p.CollectionID == nil || *p.CollectionID != f.CollectionID) {
			continue
		}
		out = append(out, r.item(p, f.UserID))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memPromptRepo) ListFavorites(_ context.Context, organizationID, userID string) ([]vault.FavoritePrompt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []vault.FavoritePrompt{}
	for k, at := range r.s.favorites {
		if k.userID != userID {
			continue
		}
		p, ok := r.s.prompts[k.promptID]
		if !ok || p.OrganizationID != organizationID {
			continue
		}
		out = append(out, vault.FavoritePrompt{PromptListItem: r.item(p, userID), FavoritedAt: at})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FavoritedAt.After(out[j].FavoritedAt) })
	return out, nil
}

func (r *memPromptRepo) AdjustFavoriteCount(_ context.Context, id string, delta int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prompts[id]
	if !ok {
		return 0, notFound("prompt", id)
	}
	p.FavoriteCount = max(p.FavoriteCount+delta, 0)
	return p.FavoriteCount, nil
}

type memVersionRepo struct{ s *memStore }

func (r *memVersionRepo) Create(_ context.Context, v *vault.PromptVersion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.versions {
		if existing.PromptID == v.PromptID && existing.Version == v.Version {
			return fmt.Errorf("version %d exists: %w", v.Version, domain.ErrConflict)
		}
	}
	v.ID = r.s.nextID()
	r.s.versions = append(r.s.versions, *v)
	return nil
}

func (r *memVersionRepo) MaxVersion(_ context.Context, promptID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, v := range r.s.versions {
		if v.PromptID == promptID && v.Version > n {
			n = v.Version
		}
	}
	return n, nil
}

func (r *memVersionRepo) ListByPrompt(_ context.Context, promptID string, limit int) ([]vault.PromptVersion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []vault.PromptVersion{}
	for _, v := range r.s.versions {
		if v.PromptID == promptID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memCommentRepo struct{ s *memStore }

func (r *memCommentRepo) Create(_ context.Context, c *vault.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.nextID()
	r.s.comments = append(r.s.comments, *c)
	return nil
}

func (r *memCommentRepo) ListByPrompt(_ context.Context, promptID string) ([]vault.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []vault.Comment{}
	for i := len(r.s.comments) - 1; i >= 0; i-- {
		if r.s.comments[i].PromptID == promptID {
			out = append(out, r.s.comments[i])
		}
	}
	return out, nil
}

type memFavoriteRepo struct{ s *memStore }

func (r *memFavoriteRepo) Exists(_ context.Context, userID, promptID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.favorites[favoriteKey{userID, promptID}]
	return ok, nil
}

func (r *memFavoriteRepo) Create(_ context.Context, userID, promptID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := favoriteKey{userID, promptID}
	if _, ok := r.s.favorites[key]; ok {
		return fmt.Errorf("favorite exists: %w", domain.ErrConflict)
	}
	r.s.favorites[key] = time.Now()
	return nil
}

func (r *memFavoriteRepo) Delete(_ context.Context, userID, promptID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := favoriteKey{userID, promptID}
	if _, ok := r.s.favorites[key]; !ok {
		return notFound("favorite", promptID)
	}
	delete(r.s.favorites, key)
	return nil
}

// --- taxonomy ---

type memTagRepo struct{ s *memStore }

func (r *memTagRepo) bySlug(organizationID, slug string) *vault.Tag {
	for _, t := range r.s.tags {
		if t.OrganizationID == organizationID && t.Slug == slug {
			return t
		}
	}
	return nil
}

func (r *memTagRepo) countPrompts(id string) int {
	n := 0
	for _, set := range r.s.promptTags {
		if set[id] {
			n++
		}
	}
	return n
}

func (r *memTagRepo) Create(_ context.Context, t *vault.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.bySlug(t.OrganizationID, t.Slug) != nil {
		return fmt.Errorf("slug %q taken: %w", t.Slug, domain.ErrConflict)
	}
	t.ID = r.s.nextID()
	cp := *t
	r.s.tags[t.ID] = &cp
	return nil
}

func (r *memTagRepo) GetByID(_ context.Context, id string) (*vault.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tags[id]
	if !ok {
		return nil, notFound("tag", id)
	}
	cp := *t
	return &cp, nil
}

func (r *memTagRepo) GetBySlug(_ context.Context, organizationID, slug string) (*vault.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.bySlug(organizationID, slug)
	if t == nil {
		return nil, notFound("tag", slug)
	}
	cp := *t
	return &cp, nil
}

func (r *memTagRepo) List(_ context.Context, organizationID string) ([]vault.TagView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []vault.TagView{}
	for _, t := range r.s.tags {
		if t.OrganizationID == organizationID {
			out = append(out, vault.TagView{Tag: *t, PromptCount: r.countPrompts(t.ID)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memTagRepo) Update(_ context.Context, t *vault.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tags[t.ID]; !ok {
		return notFound("tag", t.ID)
	}
	if other := r.bySlug(t.OrganizationID, t.Slug); other != nil && other.ID != t.ID {
		return fmt.Errorf("slug %q taken: %w", t.Slug, domain.ErrConflict)
	}
	cp := *t
	r.s.tags[t.ID] = &cp
	return nil
}

func (r *memTagRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tags[id]; !ok {
		return notFound("tag", id)
	}
	if r.countPrompts(id) > 0 {
		return fmt.Errorf("tag referenced: %w", domain.ErrConflict)
	}
	delete(r.s.tags, id)
	return nil
}

func (r *memTagRepo) CountPrompts(_ context.Context, id string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.countPrompts(id), nil
}

func (r *memTagRepo) GetByName(_ context.Context, organizationID, name string) (*vault.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tags {
		if t.OrganizationID == organizationID && strings.EqualFold(t.Name, name) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, notFound("tag", name)
}

func (r *memTagRepo) LinkPrompt(_ context.Context, promptID, tagID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tags[tagID]; !ok {
		return notFound("tag", tagID)
	}
	if r.s.promptTags[promptID] == nil {
		r.s.promptTags[promptID] = map[string]bool{}
	}
	r.s.promptTags[promptID][tagID] = true
	return nil
}

func (r *memTagRepo) UnlinkAll(_ context.Context, promptID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.promptTags, promptID)
	return nil
}

func (r *memTagRepo) ListForPrompts(_ context.Context, promptIDs []string) (map[string][]vault.TagSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[string][]vault.TagSummary{}
	for _, pid := range promptIDs {
		for tagID := range r.s.promptTags[pid] {
			t := r.s.tags[tagID]
			out[pid] = append(out[pid], vault.TagSummary{ID: t.ID, Name: t.Name, Slug: t.Slug, Color: t.Color})
		}
		sort.Slice(out[pid], func(i, j int) bool { return out[pid][i].Name < out[pid][j].Name })
	}
	return out, nil
}

type memCategoryRepo struct{ s *memStore }

func (r *memCategoryRepo) bySlug(organizationID, slug string) *vault.Category {
	for _, c := range r.s.categories {
		if c.OrganizationID == organizationID && c.Slug == slug {
			return c
		}
	}
	return nil
}

func (r *memCategoryRepo) countPrompts(id string) int {
	n := 0
	for _, p := range r.s.prompts {
		if p.CategoryID != nil && *p.CategoryID == id {
			n++
		}
	}
	return n
}

func (r *memCategoryRepo) Create(_ context.Context, c *vault.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.bySlug(c.OrganizationID, c.Slug) != nil {
		return fmt.Errorf("slug %q taken: %w", c.Slug, domain.ErrConflict)
	}
	c.ID = r.s.nextID()
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *memCategoryRepo) GetByID(_ context.Context, id string) (*vault.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, notFound("category", id)
	}
	cp := *c
	return &cp, nil
}

func (r *memCategoryRepo) GetBySlug(_ context.Context, organizationID, slug string) (*vault.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.bySlug(organizationID, slug)
	if c == nil {
		return nil, notFound("category", slug)
	}
	cp := *c
	return &cp, nil
}

func (r *memCategoryRepo) List(_ context.Context, organizationID string) ([]vault.CategoryView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []vault.CategoryView{}
	for _, c := range r.s.categories {
		if c.OrganizationID == organizationID {
			out = append(out, vault.CategoryView{Category: *c, PromptCount: r.countPrompts(c.ID)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memCategoryRepo) Update(_ context.Context, c *vault.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; !ok {
		return notFound("category", c.ID)
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return notFound("category", id)
	}
	if r.countPrompts(id) > 0 {
		return fmt.Errorf("category referenced: %w", domain.ErrConflict)
	}
	delete(r.s.categories, id)
	return nil
}

func (r *memCategoryRepo) CountPrompts(_ context.Context, id string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.countPrompts(id), nil
}

// --- api keys and activity ---

type memAPIKeyRepo struct{ s *memStore }

func (r *memAPIKeyRepo) Create(_ context.Context, k *vault.APIKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k.ID = r.s.nextID()
	cp := *k
	r.s.apiKeys[k.ID] = &cp
	return nil
}

func (r *memAPIKeyRepo) GetByID(_ context.Context, id string) (*vault.APIKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k, ok := r.s.apiKeys[id]
	if !ok {
		return nil, notFound("api key", id)
	}
	cp := *k
	return &cp, nil
}

func (r *memAPIKeyRepo) GetByKey(_ context.Context, secret string) (*vault.APIKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, k := range r.s.apiKeys {
		if k.Key == secret {
			cp := *k
			return &cp, nil
		}
	}
	return nil, notFound("api key", vault.MaskSecret(secret))
}

func (r *memAPIKeyRepo) List(_ context.Context, organizationID string) ([]vault.APIKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []vault.APIKey{}
	for _, k := range r.s.apiKeys {
		if k.OrganizationID == organizationID {
			out = append(out, *k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memAPIKeyRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.apiKeys[id]; !ok {
		return notFound("api key", id)
	}
	delete(r.s.apiKeys, id)
	return nil
}

func (r *memAPIKeyRepo) TouchLastUsed(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.touchCalls++
	if k, ok := r.s.apiKeys[id]; ok {
		k.LastUsedAt = &at
	}
	return nil
}

type memActivityRepo struct{ s *memStore }

func (r *memActivityRepo) Create(_ context.Context, a *vault.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failActivity != "" && a.Action == r.s.failActivity {
		return fmt.Errorf("record %s: connection reset", a.Action)
	}
	a.ID = r.s.nextID()
	r.s.activities = append(r.s.activities, *a)
	return nil
}

var (
	_ repositories.OrganizationRepository = (*memOrgRepo)(nil)
	_ repositories.UserRepository         = (*memUserRepo)(nil)
	_ vaultRepo.CollectionRepository      = (*memCollectionRepo)(nil)
	_ vaultRepo.PromptRepository          = (*memPromptRepo)(nil)
	_ vaultRepo.VersionRepository         = (*memVersionRepo)(nil)
	_ vaultRepo.CommentRepository         = (*memCommentRepo)(nil)
	_ vaultRepo.FavoriteRepository        = (*memFavoriteRepo)(nil)
	_ vaultRepo.TagRepository             = (*memTagRepo)(nil)
	_ vaultRepo.CategoryRepository        = (*memCategoryRepo)(nil)
	_ vaultRepo.APIKeyRepository          = (*memAPIKeyRepo)(nil)
	_ vaultRepo.ActivityRepository        = (*memActivityRepo)(nil)
)

// fixture wires every vault service over one memStore with two tenants.
type fixture struct {
	store *memStore
	tx    *fakeTxManager

	collections vaultSvc.CollectionService
	prompts     vaultSvc.PromptService
	favorites   vaultSvc.FavoriteService
	comments    vaultSvc.CommentService
	tags        vaultSvc.TagService
	categories  vaultSvc.CategoryService
	apiKeys     vaultSvc.APIKeyService

	orgID      string
	otherOrgID string
	userID     string
	otherUser  string
}

func newFixture() *fixture {
	s := newMemStore()
	tx := &fakeTxManager{store: s}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	orgRepo := &memOrgRepo{s}
	userRepo := &memUserRepo{s}
	collectionRepo := &memCollectionRepo{s}
	promptRepo := &memPromptRepo{s}
	versionRepo := &memVersionRepo{s}
	commentRepo := &memCommentRepo{s}
	favoriteRepo := &memFavoriteRepo{s}
	tagRepo := &memTagRepo{s}
	categoryRepo := &memCategoryRepo{s}
	apiKeyRepo := &memAPIKeyRepo{s}

	authorizer := serviceAuth.NewTenantAuthorizer(collectionRepo, promptRepo, categoryRepo, tagRepo, apiKeyRepo)
	activity := vaultService.NewActivityRecorder(&memActivityRepo{s}, logger)
	tagService := vaultService.NewTagService(tagRepo, tx, authorizer, activity, logger)

	f := &fixture{
		store:       s,
		tx:          tx,
		collections: vaultService.NewCollectionService(collectionRepo, tx, authorizer, activity, logger),
		prompts: vaultService.NewPromptService(
			promptRepo, versionRepo, commentRepo, tagRepo, tagService, tx, authorizer, activity, logger,
		),
		favorites:  vaultService.NewFavoriteService(promptRepo, favoriteRepo, tagRepo, tx, authorizer, activity, logger),
		comments:   vaultService.NewCommentService(commentRepo, userRepo, tx, authorizer, activity, logger),
		tags:       tagService,
		categories: vaultService.NewCategoryService(categoryRepo, tx, authorizer, activity, logger),
		apiKeys:    vaultService.NewAPIKeyService(apiKeyRepo, orgRepo, tx, authorizer, activity, "pk_test", logger),
	}

	ctx := context.Background()
	org := &models.Organization{Kind: models.TenantOrganization, ExternalID: "org_acme", Name: "Acme"}
	other := &models.Organization{Kind: models.TenantOrganization, ExternalID: "org_globex", Name: "Globex"}
	_, _ = orgRepo.Create(ctx, org)
	_, _ = orgRepo.Create(ctx, other)
	f.orgID = org.ID
	f.otherOrgID = other.ID

	ada := &models.User{ExternalID: "user_ada", Email: "ada@example.com", FirstName: strPtr("Ada"), LastName: strPtr("Lovelace")}
	grace := &models.User{ExternalID: "user_grace", Email: "grace@example.com"}
	_ = userRepo.Upsert(ctx, ada)
	_ = userRepo.Upsert(ctx, grace)
	f.userID = ada.ID
	f.otherUser = grace.ID

	return f
}

func (f *fixture) createCollection(name string, parentID *string) *vault.CollectionView {
	return f.createCollectionIn(f.orgID, name, parentID)
}

func (f *fixture) createCollectionIn(orgID, name string, parentID *string) *vault.CollectionView {
	view, err := f.collections.CreateCollection(context.Background(), &vaultSvc.CreateCollectionRequest{
		OrganizationID: orgID,
		UserID:         f.userID,
		Name:           name,
		ParentID:       parentID,
	})
	if err != nil {
		panic(err)
	}
	return view
}

func (f *fixture) createPrompt(title, content string, tags ...string) *vault.PromptDetail {
	detail, err := f.prompts.CreatePrompt(context.Background(), &vaultSvc.CreatePromptRequest{
		OrganizationID: f.orgID,
		UserID:         f.userID,
		Title:          title,
		Content:        content,
		Tags:           tags,
	})
	if err != nil {
		panic(err)
	}
	return detail
}
