package rundb

import (
	"context"
	"fmt"

	rundomain "github.com/Paddock-Club/trackmaster/app/modules/run/domain"
)

// GetVocabulary loads the active canonical names for fuzzy matching.
func (db *RunDBImpl) GetVocabulary(ctx context.Context) (rundomain.Vocabulary, error) {
	var names []string
	err := db.DB.NewSelect().
		Model((*VocabularyEntry)(nil)).
		Column("name").
		Where("active = TRUE").
		Order("name ASC").
		Scan(ctx, &names)
	if err != nil {
		return rundomain.Vocabulary{}, fmt.Errorf("failed to load vocabulary: %w", err)
	}
	return rundomain.NewVocabulary(names), nil
}

// AddVocabularyEntry registers a canonical name, reactivating it when it was
// previously retired.
func (db *RunDBImpl) AddVocabularyEntry(ctx context.Context, name string) error {
	entry := VocabularyEntry{Name: name, Active: true}
	_, err := db.DB.NewInsert().
		Model(&entry).
		On("CONFLICT (name) DO UPDATE").
		Set("active = TRUE").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to add vocabulary entry %q: %w", name, err)
	}
	return nil
}
