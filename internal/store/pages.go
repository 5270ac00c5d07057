package store

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PageRepository persists pages.
type PageRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// Get returns the page for the provided id or nil when not found. Archived
// pages are returned; filtering them is a service-level decision.
func (r *PageRepository) Get(id uuid.UUID) (*Page, error) {
	var page Page
	err := r.db.First(&page, "id = ?", id).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logError(r.logger, logrus.Fields{"page_id": id}, err, "fetching page")
		return nil, eris.Wrapf(err, "fetching page: %s", id)
	}

	return &page, nil
}

// Add inserts a new page row.
func (r *PageRepository) Add(page *Page) error {
	if page == nil {
		return eris.New("page is nil")
	}

	if err := r.db.Create(page).Error; err != nil {
		logError(r.logger, logrus.Fields{"title": page.Title}, err, "creating page")
		return eris.Wrapf(err, "creating page: %s", page.Title)
	}

	return nil
}

// Save writes back every field of an existing page row.
func (r *PageRepository) Save(page *Page) error {
	if page == nil {
		return eris.New("page is nil")
	}

	if err := r.db.Save(page).Error; err != nil {
		logError(r.logger, logrus.Fields{"page_id": page.ID}, err, "saving page")
		return eris.Wrapf(err, "saving page: %s", page.ID)
	}

	return nil
}

// ListActiveByWorkspace returns all non-archived pages for the workspace,
// unordered. Ordering is the tree builder's concern.
func (r *PageRepository) ListActiveByWorkspace(workspaceID uuid.UUID) ([]Page, error) {
	var pages []Page
	err := r.db.Find(&pages, "workspace_id = ? AND is_archived = ?", workspaceID, false).Error
	if err != nil {
		logError(r.logger, logrus.Fields{"workspace_id": workspaceID}, err, "listing pages")
		return nil, eris.Wrapf(err, "listing pages for workspace: %s", workspaceID)
	}

	return pages, nil
}

// PageContentRepository persists the 1:1 JSON documents attached to pages.
type PageContentRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// GetByPage returns the content row for the page or nil when none exists yet.
func (r *PageContentRepository) GetByPage(pageID uuid.UUID) (*PageContent, error) {
	var content PageContent
	err := r.db.First(&content, "page_id = ?", pageID).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logError(r.logger, logrus.Fields{"page_id": pageID}, err, "fetching page content")
		return nil, eris.Wrapf(err, "fetching content for page: %s", pageID)
	}

	return &content, nil
}

// Add inserts a new content row.
func (r *PageContentRepository) Add(content *PageContent) error {
	if content == nil {
		return eris.New("page content is nil")
	}

	if err := r.db.Create(content).Error; err != nil {
		logError(r.logger, logrus.Fields{"page_id": content.PageID}, err, "creating page content")
		return eris.Wrapf(err, "creating content for page: %s", content.PageID)
	}

	return nil
}

// Save writes back an existing content row.
func (r *PageContentRepository) Save(content *PageContent) error {
	if content == nil {
		return eris.New("page content is nil")
	}

	if err := r.db.Save(content).Error; err != nil {
		logError(r.logger, logrus.Fields{"page_id": content.PageID}, err, "saving page content")
		return eris.Wrapf(err, "saving content for page: %s", content.PageID)
	}

	return nil
}
