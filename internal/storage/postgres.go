package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/your-org/reunite/internal/config"
	"github.com/your-org/reunite/internal/models"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const personColumns = `id, full_name, age, person_contact_number, last_seen_location, last_seen_time,
	identification_details, is_minor, guardian_type, guardian_details,
	reporter_name, reporter_relation, reporter_contact_number,
	status, found_snapshot, found_on_camera, created_at, updated_at`

func scanPerson(row pgx.Row) (*models.Person, error) {
	p := &models.Person{}
	err := row.Scan(&p.ID, &p.FullName, &p.Age, &p.PersonContactNumber, &p.LastSeenLocation, &p.LastSeenTime,
		&p.IdentificationDetails, &p.IsMinor, &p.GuardianType, &p.GuardianDetails,
		&p.ReporterName, &p.ReporterRelation, &p.ReporterContactNumber,
		&p.Status, &p.FoundSnapshot, &p.FoundOnCamera, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// --- Persons ---

func (s *PostgresStore) CreatePerson(ctx context.Context, p *models.Person, images []models.PersonImage, embeddings [][]float32) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Status = models.StatusLost

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create person: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO persons (id, full_name, age, person_contact_number, last_seen_location, last_seen_time,
			identification_details, is_minor, guardian_type, guardian_details,
			reporter_name, reporter_relation, reporter_contact_number, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING created_at, updated_at`,
		p.ID, p.FullName, p.Age, p.PersonContactNumber, p.LastSeenLocation, p.LastSeenTime,
		p.IdentificationDetails, p.IsMinor, p.GuardianType, p.GuardianDetails,
		p.ReporterName, p.ReporterRelation, p.ReporterContactNumber, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create person: %w", err)
	}

	for i := range images {
		img := &images[i]
		if img.ID == uuid.Nil {
			img.ID = uuid.New()
		}
		img.PersonID = p.ID
		img.Position = i
		err = tx.QueryRow(ctx,
			`INSERT INTO person_images (id, person_id, object_key, content_type, position)
			 VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
			img.ID, img.PersonID, img.ObjectKey, img.ContentType, img.Position,
		).Scan(&img.CreatedAt)
		if err != nil {
			return fmt.Errorf("create person image: %w", err)
		}

		if i < len(embeddings) && len(embeddings[i]) > 0 {
			vec := pgvector.NewVector(embeddings[i])
			_, err = tx.Exec(ctx,
				`INSERT INTO face_embeddings (id, person_id, embedding, source_key)
				 VALUES ($1, $2, $3, $4)`,
				uuid.New(), p.ID, vec, img.ObjectKey)
			if err != nil {
				return fmt.Errorf("create face embedding: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create person: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	p, err := scanPerson(s.pool.QueryRow(ctx,
		`SELECT `+personColumns+` FROM persons WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get person: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListPersons(ctx context.Context, q PersonQuery) ([]models.Person, error) {
	order := "created_at DESC"
	switch q.Sort {
	case SortOldest:
		order = "created_at ASC"
	case SortAgeAsc:
		order = "age ASC"
	case SortAgeDesc:
		order = "age DESC"
	}

	query := `SELECT ` + personColumns + ` FROM persons`
	var args []interface{}
	if q.Search != "" {
		query += ` WHERE full_name ILIKE $1 OR last_seen_location ILIKE $1`
		args = append(args, "%"+q.Search+"%")
	}
	query += ` ORDER BY ` + order

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	defer rows.Close()

	return collectPersons(rows)
}

func (s *PostgresStore) ListFoundPersons(ctx context.Context) ([]models.Person, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+personColumns+` FROM persons WHERE status = $1 ORDER BY created_at DESC`,
		models.StatusFound)
	if err != nil {
		return nil, fmt.Errorf("list found persons: %w", err)
	}
	defer rows.Close()

	return collectPersons(rows)
}

func collectPersons(rows pgx.Rows) ([]models.Person, error) {
	var persons []models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, *p)
	}
	return persons, rows.Err()
}

func (s *PostgresStore) ListPersonImages(ctx context.Context, personID uuid.UUID) ([]models.PersonImage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, person_id, object_key, content_type, position, created_at
		 FROM person_images WHERE person_id = $1 ORDER BY position`, personID)
	if err != nil {
		return nil, fmt.Errorf("list person images: %w", err)
	}
	defer rows.Close()

	var images []models.PersonImage
	for rows.Next() {
		var img models.PersonImage
		if err := rows.Scan(&img.ID, &img.PersonID, &img.ObjectKey, &img.ContentType, &img.Position, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan person image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// MarkPersonFound flips status Lost -> Found. The WHERE clause keeps the
// transition one-way and one-time; an already-Found person comes back
// unchanged from the fallback read.
func (s *PostgresStore) MarkPersonFound(ctx context.Context, id uuid.UUID, snapshot, cameraName string) (*models.Person, error) {
	p, err := scanPerson(s.pool.QueryRow(ctx,
		`UPDATE persons SET status = $2, found_snapshot = $3, found_on_camera = $4, updated_at = now()
		 WHERE id = $1 AND status = $5
		 RETURNING `+personColumns,
		id, models.StatusFound, snapshot, cameraName, models.StatusLost))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("mark person found: %w", err)
	}
	return s.GetPerson(ctx, id)
}

// --- Notifications ---

func (s *PostgresStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CameraName == "" {
		n.CameraName = models.DefaultCameraName
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO notifications (id, person_id, person_name, snapshot, camera_name, is_read)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		n.ID, n.PersonID, n.PersonName, n.Snapshot, n.CameraName, n.IsRead,
	).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, person_id, person_name, snapshot, camera_name, is_read, created_at
		 FROM notifications ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.PersonID, &n.PersonName, &n.Snapshot, &n.CameraName, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// TakeNotification deletes the notification and returns its previous value in
// a single statement, so concurrent resolutions cannot both observe it.
func (s *PostgresStore) TakeNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	n := &models.Notification{}
	err := s.pool.QueryRow(ctx,
		`DELETE FROM notifications WHERE id = $1
		 RETURNING id, person_id, person_name, snapshot, camera_name, is_read, created_at`, id,
	).Scan(&n.ID, &n.PersonID, &n.PersonName, &n.Snapshot, &n.CameraName, &n.IsRead, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("take notification: %w", err)
	}
	return n, nil
}

// --- Staff ---

func (s *PostgresStore) CreateStaff(ctx context.Context, st *models.Staff) error {
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	if st.Role == "" {
		st.Role = models.RoleGroundStaff
	}
	if st.AssignedZone == "" {
		st.AssignedZone = "General"
	}
	st.IsActive = true

	err := s.pool.QueryRow(ctx,
		`INSERT INTO staff (id, full_name, staff_id, password_hash, role, phone_number, assigned_zone, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`,
		st.ID, st.FullName, st.StaffID, st.PasswordHash, st.Role, st.PhoneNumber, st.AssignedZone, st.IsActive,
	).Scan(&st.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

const staffColumns = `id, full_name, staff_id, password_hash, role, phone_number, assigned_zone, is_active, created_at`

func (s *PostgresStore) getStaff(ctx context.Context, where string, arg interface{}) (*models.Staff, error) {
	st := &models.Staff{}
	err := s.pool.QueryRow(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE `+where, arg,
	).Scan(&st.ID, &st.FullName, &st.StaffID, &st.PasswordHash, &st.Role,
		&st.PhoneNumber, &st.AssignedZone, &st.IsActive, &st.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get staff: %w", err)
	}
	return st, nil
}

func (s *PostgresStore) GetStaffByStaffID(ctx context.Context, staffID string) (*models.Staff, error) {
	return s.getStaff(ctx, `staff_id = $1`, staffID)
}

func (s *PostgresStore) GetStaffByPhone(ctx context.Context, phone string) (*models.Staff, error) {
	return s.getStaff(ctx, `phone_number = $1`, phone)
}
