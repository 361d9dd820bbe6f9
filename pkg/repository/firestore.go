package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/rapor/pkg/domain/interfaces"
	"github.com/secmon-lab/rapor/pkg/domain/model"
	"github.com/secmon-lab/rapor/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// Collection names
	monthsCollection     = "months"
	categoriesCollection = "categories"
)

// categoryDocument stores a category file verbatim so it goes through the
// same decoders as the filesystem source
type categoryDocument struct {
	Payload   string    `firestore:"payload"`
	Format    string    `firestore:"format,omitempty"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// Firestore reads monthly data from months/{month}/categories/{category}
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore source
func NewFirestore(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	logger := ctxlog.From(ctx)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	// Fail fast on invalid project or missing permissions
	_, err = client.Collection(monthsCollection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("firestore error code", status.Code(err).String()),
			)
		}
		logger.Debug("Firestore connection test returned error (may be empty collection)",
			"error", err,
			"errorCode", status.Code(err).String(),
		)
	}

	logger.Info("Firestore source initialized",
		"projectID", projectID,
		"databaseID", databaseID,
	)

	return &Firestore{client: client}, nil
}

func (f *Firestore) categories(month types.Month) *firestore.CollectionRef {
	return f.client.Collection(monthsCollection).Doc(month.String()).Collection(categoriesCollection)
}

// ListMonths returns every month document, including months that only
// exist through their categories subcollection
func (f *Firestore) ListMonths(ctx context.Context) ([]types.Month, error) {
	iter := f.client.Collection(monthsCollection).DocumentRefs(ctx)

	var months []types.Month
	for {
		ref, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate months")
		}

		month := types.Month(ref.ID)
		if !month.IsValid() {
			ctxlog.From(ctx).Warn("Ignoring malformed month document", "id", ref.ID)
			continue
		}
		months = append(months, month)
	}

	sort.Slice(months, func(i, j int) bool { return months[i] < months[j] })
	return months, nil
}

// LoadCategory retrieves and decodes one category document
func (f *Firestore) LoadCategory(ctx context.Context, month types.Month, category types.Category) (any, error) {
	if err := checkMonth(month); err != nil {
		return nil, err
	}
	if err := checkCategory(category); err != nil {
		return nil, err
	}

	doc, err := f.categories(month).Doc(category.String()).Get(ctx)
	if err != nil {
		if status.Code(err) != codes.NotFound {
			return nil, goerr.Wrap(err, "failed to get category from firestore",
				goerr.V("month", month),
				goerr.V("category", category))
		}

		exists, err := f.monthExists(ctx, month)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, goerr.Wrap(model.ErrMonthNotFound, "month not found in firestore",
				goerr.V("month", month))
		}
		return nil, goerr.Wrap(model.ErrCategoryNotFound, "category not found in firestore",
			goerr.V("month", month),
			goerr.V("category", category))
	}

	raw, err := toRawCategory(category, doc)
	if err != nil {
		return nil, err
	}
	v, err := raw.Decode()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load category",
			goerr.V("month", month),
			goerr.V("category", category))
	}
	return v, nil
}

// LoadMonth retrieves every category document of the month
func (f *Firestore) LoadMonth(ctx context.Context, month types.Month) (*model.MonthReport, error) {
	if err := checkMonth(month); err != nil {
		return nil, err
	}

	docs, err := f.categories(month).Documents(ctx).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list categories from firestore", goerr.V("month", month))
	}
	if len(docs) == 0 {
		exists, err := f.monthExists(ctx, month)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, goerr.Wrap(model.ErrMonthNotFound, "month not found in firestore",
				goerr.V("month", month))
		}
	}

	report := model.NewMonthReport(month)
	for _, doc := range docs {
		category := types.Category(doc.Ref.ID)
		if !category.IsValid() {
			continue
		}

		raw, err := toRawCategory(category, doc)
		if err != nil {
			return nil, err
		}
		v, err := raw.Decode()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load category",
				goerr.V("month", month),
				goerr.V("category", category))
		}
		if err := report.Set(category, v); err != nil {
			return nil, goerr.Wrap(err, "failed to build month report", goerr.V("month", month))
		}
	}

	return report, nil
}

// PutCategory stores a category file as-is
func (f *Firestore) PutCategory(ctx context.Context, month types.Month, raw *RawCategory) error {
	if err := checkMonth(month); err != nil {
		return err
	}
	if raw == nil {
		return goerr.New("category data is nil")
	}
	if err := checkCategory(raw.Category); err != nil {
		return err
	}

	// The parent document is written so ListMonths works without
	// relying on missing-document references
	if err := f.PutMonth(ctx, month); err != nil {
		return err
	}

	doc := categoryDocument{
		Payload:   string(raw.Data),
		Format:    string(raw.Format),
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := f.categories(month).Doc(raw.Category.String()).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to save category to firestore",
			goerr.V("month", month),
			goerr.V("category", raw.Category))
	}
	return nil
}

// PutMonth creates the month document. A month without any category
// document is served as an empty report.
func (f *Firestore) PutMonth(ctx context.Context, month types.Month) error {
	if err := checkMonth(month); err != nil {
		return err
	}

	if _, err := f.client.Collection(monthsCollection).Doc(month.String()).Set(ctx, map[string]any{
		"updated_at": time.Now().UTC(),
	}, firestore.MergeAll); err != nil {
		return goerr.Wrap(err, "failed to save month to firestore", goerr.V("month", month))
	}
	return nil
}

// monthExists reports whether the month document or any of its category
// documents exists. ListMonths lists both kinds.
func (f *Firestore) monthExists(ctx context.Context, month types.Month) (bool, error) {
	_, err := f.client.Collection(monthsCollection).Doc(month.String()).Get(ctx)
	if err == nil {
		return true, nil
	}
	if status.Code(err) != codes.NotFound {
		return false, goerr.Wrap(err, "failed to get month from firestore", goerr.V("month", month))
	}

	iter := f.categories(month).Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err = iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, goerr.Wrap(err, "failed to check month in firestore", goerr.V("month", month))
	}
	return true, nil
}

func toRawCategory(category types.Category, doc *firestore.DocumentSnapshot) (*RawCategory, error) {
	var d categoryDocument
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode category document",
			goerr.V("category", category),
			goerr.T(model.ErrTagMalformed))
	}

	raw := &RawCategory{
		Category: category,
		Format:   model.ConfigFormat(d.Format),
		Data:     []byte(d.Payload),
	}
	if category == types.CategoryConfig && raw.Format == "" {
		raw.Format = model.ConfigFormatYAML
	}
	return raw, nil
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

var _ interfaces.Source = (*Firestore)(nil) // Compile-time interface check
