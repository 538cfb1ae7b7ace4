package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/example/reading-nook/internal/persistence"
)

// BookRepository implements persistence.BookRepository on SQLite. The quotes
// list is stored as a JSON array in a TEXT column.
type BookRepository struct {
	db *DB
}

// NewBookRepository creates a SQLite-backed book repository.
func NewBookRepository(db *DB) *BookRepository {
	return &BookRepository{db: db}
}

const bookColumns = "id, user_id, title, author, genre, status, start_date, finish_date, rating, notes, date_added, cover_url, quotes, created_at, updated_at"

// CreateBook inserts a new shelf entry.
func (r *BookRepository) CreateBook(ctx context.Context, book persistence.Book) error {
	if book.ID == "" || book.UserID == "" || strings.TrimSpace(book.Title) == "" {
		return persistence.ErrConstraintViolation
	}
	if !book.Status.Valid() {
		return persistence.ErrConstraintViolation
	}

	quotes, err := encodeQuotes(book.Quotes)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	execErr := withBusyRetry(ctx, func() error {
		_, err := r.db.db.ExecContext(ctx, `
			INSERT INTO books (id, user_id, title, author, genre, status, start_date, finish_date,
				rating, notes, date_added, cover_url, quotes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			book.ID,
			book.UserID,
			book.Title,
			book.Author,
			book.Genre,
			string(book.Status),
			nullString(book.StartDate),
			nullString(book.FinishDate),
			nullInt(book.Rating),
			nullString(book.Notes),
			formatTime(book.DateAdded),
			nullString(book.CoverURL),
			quotes,
			formatTime(now),
			formatTime(now),
		)
		return err
	})
	return mapError(execErr)
}

// GetBook retrieves a shelf entry by id.
func (r *BookRepository) GetBook(ctx context.Context, id string) (persistence.Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books WHERE id = ?", bookColumns)
	return r.scanOne(r.db.db.QueryRowContext(ctx, query, id))
}

// UpdateBook persists a modified shelf entry.
func (r *BookRepository) UpdateBook(ctx context.Context, book persistence.Book) error {
	if !book.Status.Valid() {
		return persistence.ErrConstraintViolation
	}

	quotes, err := encodeQuotes(book.Quotes)
	if err != nil {
		return err
	}

	var result sql.Result
	execErr := withBusyRetry(ctx, func() error {
		var err error
		result, err = r.db.db.ExecContext(ctx, `
			UPDATE books
			SET title = ?, author = ?, genre = ?, status = ?, start_date = ?, finish_date = ?,
				rating = ?, notes = ?, cover_url = ?, quotes = ?, updated_at = ?
			WHERE id = ?
		`,
			book.Title,
			book.Author,
			book.Genre,
			string(book.Status),
			nullString(book.StartDate),
			nullString(book.FinishDate),
			nullInt(book.Rating),
			nullString(book.Notes),
			nullString(book.CoverURL),
			quotes,
			formatTime(time.Now().UTC()),
			book.ID,
		)
		return err
	})
	if execErr != nil {
		return mapError(execErr)
	}
	return requireAffected(result)
}

// DeleteBook removes a shelf entry.
func (r *BookRepository) DeleteBook(ctx context.Context, id string) error {
	var result sql.Result
	err := withBusyRetry(ctx, func() error {
		var execErr error
		result, execErr = r.db.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
		return execErr
	})
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// ListBooks returns the user's shelf, most recently added first.
func (r *BookRepository) ListBooks(ctx context.Context, userID string) ([]persistence.Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books WHERE user_id = ? ORDER BY date_added DESC, id", bookColumns)

	rows, err := r.db.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	books := make([]persistence.Book, 0)
	for rows.Next() {
		book, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return books, nil
}

func (r *BookRepository) scanOne(row rowScanner) (persistence.Book, error) {
	var book persistence.Book
	var status, dateAdded, createdAt, updatedAt, quotes string
	var startDate, finishDate, notes, coverURL sql.NullString
	var rating sql.NullInt64

	if err := row.Scan(
		&book.ID,
		&book.UserID,
		&book.Title,
		&book.Author,
		&book.Genre,
		&status,
		&startDate,
		&finishDate,
		&rating,
		&notes,
		&dateAdded,
		&coverURL,
		&quotes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Book{}, mapError(err)
	}

	book.Status = persistence.BookStatus(status)
	book.StartDate = stringPtr(startDate)
	book.FinishDate = stringPtr(finishDate)
	book.Rating = intPtr(rating)
	book.Notes = stringPtr(notes)
	book.CoverURL = stringPtr(coverURL)

	if err := json.Unmarshal([]byte(quotes), &book.Quotes); err != nil {
		return persistence.Book{}, fmt.Errorf("failed to decode quotes: %w", err)
	}

	var err error
	if book.DateAdded, err = parseTime(dateAdded); err != nil {
		return persistence.Book{}, fmt.Errorf("failed to parse date_added: %w", err)
	}
	if book.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Book{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if book.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Book{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return book, nil
}

func encodeQuotes(quotes []string) (string, error) {
	if quotes == nil {
		quotes = []string{}
	}
	raw, err := json.Marshal(quotes)
	if err != nil {
		return "", fmt.Errorf("failed to encode quotes: %w", err)
	}
	return string(raw), nil
}
