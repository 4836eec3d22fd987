package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Janescience/deliback-sub000/internal/forecast"
	"github.com/Janescience/deliback-sub000/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new dashboard user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO deliback.users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a dashboard user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM deliback.users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListCustomers retrieves all customers
func (r *Repository) ListCustomers() ([]models.Customer, error) {
	query := `SELECT id, name FROM deliback.customers ORDER BY name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read customers: %w", err)
	}
	return customers, nil
}

// ListProducts retrieves all catalog products
func (r *Repository) ListProducts() ([]models.Product, error) {
	query := `SELECT id, name, unit_price FROM deliback.products ORDER BY name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

// OrdersWithCustomer retrieves every order that has a customer and a delivery
// date, without line items. This is the full-ledger scan the forecaster uses
// to derive customer cadence statistics.
func (r *Repository) OrdersWithCustomer() ([]models.Order, error) {
	query := `
		SELECT o.id, o.customer_id, c.name, o.delivery_date, o.total_amount, o.created_at
		FROM deliback.orders o
		JOIN deliback.customers c ON c.id = o.customer_id
		WHERE o.customer_id IS NOT NULL AND o.delivery_date IS NOT NULL
		ORDER BY o.id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

// OrdersByCustomers retrieves all orders, with line items, for a set of
// customer ids.
func (r *Repository) OrdersByCustomers(ids []int64) ([]models.Order, error) {
	query := `
		SELECT o.id, o.customer_id, c.name, o.delivery_date, o.total_amount, o.created_at
		FROM deliback.orders o
		JOIN deliback.customers c ON c.id = o.customer_id
		WHERE o.customer_id = ANY($1) AND o.delivery_date IS NOT NULL
		ORDER BY o.id`
	rows, err := r.db.Query(query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list customer orders: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// OrdersOnWeekday retrieves all orders, with line items, whose delivery date
// falls on the given weekday, across all customers.
func (r *Repository) OrdersOnWeekday(wd forecast.Weekday) ([]models.Order, error) {
	query := `
		SELECT o.id, o.customer_id, c.name, o.delivery_date, o.total_amount, o.created_at
		FROM deliback.orders o
		JOIN deliback.customers c ON c.id = o.customer_id
		WHERE o.delivery_date IS NOT NULL
		  AND EXTRACT(ISODOW FROM o.delivery_date) = $1
		ORDER BY o.id`
	rows, err := r.db.Query(query, wd.ISO())
	if err != nil {
		return nil, fmt.Errorf("failed to list weekday orders: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// HolidayRules retrieves the weekly non-working-day rules
func (r *Repository) HolidayRules() ([]models.HolidayRule, error) {
	query := `SELECT weekday, is_non_working FROM deliback.holiday_rules`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list holiday rules: %w", err)
	}
	defer rows.Close()

	var rules []models.HolidayRule
	for rows.Next() {
		var rule models.HolidayRule
		if err := rows.Scan(&rule.Weekday, &rule.IsNonWorking); err != nil {
			return nil, fmt.Errorf("failed to scan holiday rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read holiday rules: %w", err)
	}
	return rules, nil
}

// FindOrderByID retrieves one order with its line items
func (r *Repository) FindOrderByID(id int64) (*models.Order, error) {
	order := &models.Order{}
	query := `
		SELECT o.id, o.customer_id, c.name, o.delivery_date, o.total_amount, o.created_at
		FROM deliback.orders o
		JOIN deliback.customers c ON c.id = o.customer_id
		WHERE o.id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&order.ID, &order.CustomerID, &order.CustomerName, &order.DeliveryDate, &order.TotalAmount, &order.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	orders := []models.Order{*order}
	if err := r.attachItems(orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// attachItems loads line items for the given orders in one query and assigns
// them back in place.
func (r *Repository) attachItems(orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	index := make(map[int64]*models.Order, len(orders))
	ids := make([]int64, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = &orders[i]
	}

	query := `
		SELECT i.order_id, i.product_id, p.name, i.quantity, i.unit_price, i.subtotal
		FROM deliback.order_items i
		JOIN deliback.products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.order_id, i.id`
	rows, err := r.db.Query(query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var line models.OrderLine
		if err := rows.Scan(&orderID, &line.ProductID, &line.ProductName, &line.Quantity, &line.UnitPrice, &line.Subtotal); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := index[orderID]; ok {
			o.Items = append(o.Items, line)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read order items: %w", err)
	}
	return nil
}

func scanOrders(rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.DeliveryDate, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read orders: %w", err)
	}
	return orders, nil
}
