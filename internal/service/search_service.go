package service

import (
	"log"

	"anoa.com/kirimpesan/internal/model"
	"github.com/meilisearch/meilisearch-go"
)

// SearchService keeps a Meilisearch index of the discovery projection so
// clients can do typeahead without hitting Postgres. The capped,
// authoritative username search stays in the repository; this index only
// mirrors it.
type SearchService interface {
	IndexProfile(user *model.User) error
}

type searchService struct {
	client meilisearch.ServiceManager
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{client: client}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	sortableAttrs := []string{"username"}
	_, err := s.client.Index("profiles").UpdateSortableAttributes(&sortableAttrs)
	if err != nil {
		log.Printf("Failed to update profiles sortable attributes: %v", err)
	}

	searchableAttrs := []string{"username"}
	_, err = s.client.Index("profiles").UpdateSearchableAttributes(&searchableAttrs)
	if err != nil {
		log.Printf("Failed to update profiles searchable attributes: %v", err)
	}
}

func (s *searchService) IndexProfile(user *model.User) error {
	doc := model.ProfileSummary{
		ID:        user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
	}
	if user.Profile != nil {
		doc.Bio = user.Profile.Bio
	}

	_, err := s.client.Index("profiles").UpdateDocuments([]model.ProfileSummary{doc}, strPtr("id"))
	return err
}

func strPtr(s string) *string {
	return &s
}
