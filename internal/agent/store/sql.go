package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fieldforce/internal/agent/models"
	"fieldforce/internal/platform/database"
	id "fieldforce/pkg/domain"
	"fieldforce/pkg/identity"
)

const agentColumns = `id, first_name, surname, initials, gender, date_of_birth, nationality,
	id_type, sa_id_no, passport_no, email, phone,
	address_line1, address_line2, city, province, postal_code,
	bank_name, account_holder, account_number, branch_code, account_type,
	status, created_at, updated_at`

// SQLStore persists agents through database/sql. Queries use $N placeholders and are
// rebound by the dialect; identity uniqueness is enforced by UNIQUE constraints.
type SQLStore struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSQL(db *sql.DB, dialect database.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

func (s *SQLStore) Create(ctx context.Context, a *models.Agent) error {
	if a == nil {
		return fmt.Errorf("agent is required")
	}
	query := `INSERT INTO agents (` + agentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), s.agentArgs(a)...)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("identity number must be unique: %w", ErrAlreadyUsed)
		}
		return fmt.Errorf("create agent: %w", err)
	}
	return nil
}

func (s *SQLStore) Update(ctx context.Context, a *models.Agent) error {
	if a == nil {
		return fmt.Errorf("agent is required")
	}
	query := `UPDATE agents SET
			first_name = $2, surname = $3, initials = $4, gender = $5, date_of_birth = $6,
			nationality = $7, id_type = $8, sa_id_no = $9, passport_no = $10, email = $11,
			phone = $12, address_line1 = $13, address_line2 = $14, city = $15, province = $16,
			postal_code = $17, bank_name = $18, account_holder = $19, account_number = $20,
			branch_code = $21, account_type = $22, status = $23, updated_at = $24
		WHERE id = $1`
	args := s.agentArgs(a)
	args = append(args[:23:23], args[24]) // created_at is immutable
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("identity number must be unique: %w", ErrAlreadyUsed)
		}
		return fmt.Errorf("update agent: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update agent rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) FindByID(ctx context.Context, agentID id.AgentID) (*models.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE id = $1`
	a, err := scanAgent(s.db.QueryRowContext(ctx, s.dialect.Rebind(query), uuid.UUID(agentID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find agent by id: %w", err)
	}
	return a, nil
}

func (s *SQLStore) FindByIdentityNumber(ctx context.Context, t identity.Type, number string) (*models.Agent, error) {
	column, err := identityColumn(t)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + agentColumns + ` FROM agents WHERE ` + column + ` = $1`
	a, err := scanAgent(s.db.QueryRowContext(ctx, s.dialect.Rebind(query), number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find agent by identity number: %w", err)
	}
	return a, nil
}

// List counts every match, then fetches the requested page. f is expected to be normalized.
func (s *SQLStore) List(ctx context.Context, f models.Filter) (*models.Page, error) {
	where, args := s.whereClause(f)

	var total int
	countQuery := `SELECT COUNT(*) FROM agents` + where
	if err := s.db.QueryRowContext(ctx, s.dialect.Rebind(countQuery), args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count agents: %w", err)
	}

	page := &models.Page{Total: total, Limit: f.Limit, Offset: f.Offset, Items: []*models.Agent{}}
	if total == 0 || f.Offset >= total {
		return page, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM agents%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		agentColumns, where, orderBy(f), len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		page.Items = append(page.Items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agents: %w", err)
	}
	return page, nil
}

func (s *SQLStore) whereClause(f models.Filter) (string, []any) {
	var conds []string
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		conds = append(conds, "status = "+next(string(f.Status)))
	}
	if f.IdentityType != "" {
		conds = append(conds, "id_type = "+next(string(f.IdentityType)))
	}
	if f.Query != "" {
		p := next("%" + escapeLike(f.Query) + "%")
		like := " " + s.dialect.ILike() + " " + p + ` ESCAPE '\'`
		conds = append(conds, "(first_name"+like+" OR surname"+like+" OR email"+like+
			" OR sa_id_no"+like+" OR passport_no"+like+")")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderBy(f models.Filter) string {
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	if f.SortBy == models.SortByCreatedAt {
		return fmt.Sprintf("created_at %s, id %s", dir, dir)
	}
	return fmt.Sprintf("lower(surname) %s, lower(first_name) %s, id %s", dir, dir, dir)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *SQLStore) Delete(ctx context.Context, agentID id.AgentID) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM agents WHERE id = $1`), uuid.UUID(agentID))
	if err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete agent rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count agents: %w", err)
	}
	return count, nil
}

func (s *SQLStore) agentArgs(a *models.Agent) []any {
	var dob any
	if a.DateOfBirth != nil {
		dob = s.dialect.DateArg(*a.DateOfBirth)
	}
	return []any{
		uuid.UUID(a.ID),
		a.FirstName,
		a.Surname,
		a.Initials,
		string(a.Gender),
		dob,
		a.Nationality,
		string(a.IdentityType),
		nullIfEmpty(a.SAIDNumber),
		nullIfEmpty(a.PassportNumber),
		a.Email,
		a.Phone,
		a.Address.Line1,
		a.Address.Line2,
		a.Address.City,
		a.Address.Province,
		a.Address.PostalCode,
		a.Bank.BankName,
		a.Bank.AccountHolder,
		a.Bank.AccountNumber,
		a.Bank.BranchCode,
		string(a.Bank.AccountType),
		string(a.Status),
		s.dialect.TimeArg(a.CreatedAt),
		s.dialect.TimeArg(a.UpdatedAt),
	}
}

func identityColumn(t identity.Type) (string, error) {
	switch t {
	case identity.TypeNationalID:
		return "sa_id_no", nil
	case identity.TypePassport:
		return "passport_no", nil
	default:
		return "", fmt.Errorf("unsupported identity type %q", t)
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanAgent(row interface{ Scan(dest ...any) error }) (*models.Agent, error) {
	var (
		a                     models.Agent
		agentID               uuid.UUID
		gender, idType        string
		accountType, status   string
		saID, passport        sql.NullString
		dob, created, updated any
	)
	err := row.Scan(
		&agentID, &a.FirstName, &a.Surname, &a.Initials, &gender, &dob, &a.Nationality,
		&idType, &saID, &passport, &a.Email, &a.Phone,
		&a.Address.Line1, &a.Address.Line2, &a.Address.City, &a.Address.Province, &a.Address.PostalCode,
		&a.Bank.BankName, &a.Bank.AccountHolder, &a.Bank.AccountNumber, &a.Bank.BranchCode, &accountType,
		&status, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	a.ID = id.AgentID(agentID)
	a.Gender = identity.Gender(gender)
	a.IdentityType = identity.Type(idType)
	a.SAIDNumber = saID.String
	a.PassportNumber = passport.String
	a.Bank.AccountType = models.AccountType(accountType)
	a.Status = models.Status(status)

	if a.DateOfBirth, err = database.ScanNullTime(dob); err != nil {
		return nil, fmt.Errorf("date_of_birth: %w", err)
	}
	if a.CreatedAt, err = database.ScanTime(created); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if a.UpdatedAt, err = database.ScanTime(updated); err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}
	return &a, nil
}
