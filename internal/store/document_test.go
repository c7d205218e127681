package store

import (
	"context"
	"testing"

	"rentapply/internal/utils"
	"rentapply/pkg/types"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentsByApplicationID(t *testing.T) {
	mock := newMock(t)
	repo := NewDocumentRepository(mock)

	rows := mock.NewRows(documentColumns).
		AddRow("doc-1", "app-1", types.DocumentCategoryReference, "ref.pdf", int64(1024), "application/pdf", "applications/app-1/reference/a-ref.pdf", utils.StringPtr("Reference letters"), testNow).
		AddRow("doc-2", "app-1", types.DocumentCategoryCredit, "credit.png", int64(2048), "image/png", "applications/app-1/credit/b-credit.png", (*string)(nil), testNow)

	mock.ExpectQuery(`SELECT .+ FROM application_documents WHERE application_id = \$1 ORDER BY created_at ASC`).
		WithArgs("app-1").
		WillReturnRows(rows)

	docs, err := repo.DocumentsByApplicationID(context.Background(), "app-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, types.DocumentCategoryCredit, docs[1].Category)
	assert.Nil(t, docs[1].Description)
}

func TestDocumentByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewDocumentRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM application_documents WHERE id = \$1`).
		WithArgs("doc-x").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.DocumentByID(context.Background(), "doc-x")
	require.ErrorIs(t, err, types.ErrDocumentNotFound)
}

func TestCreateDocument(t *testing.T) {
	mock := newMock(t)
	repo := NewDocumentRepository(mock)

	mock.ExpectExec(`INSERT INTO application_documents`).
		WithArgs(columnArgs(documentColumns, map[string]any{
			"application_id": "app-1",
			"category":       types.DocumentCategoryEmployment,
			"file_name":      "stub.pdf",
		})...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	doc := &types.Document{ApplicationID: "app-1", Category: types.DocumentCategoryEmployment, FileName: "stub.pdf"}
	require.NoError(t, repo.CreateDocument(context.Background(), doc))
	require.NotEmpty(t, doc.ID)
	assert.False(t, doc.CreatedAt.IsZero())
}
