package store

import (
	"context"

	"sms-relay/internal/model"
	"sms-relay/pkg/db"
	"sms-relay/pkg/metrics"
)

type MySQL struct {
	db *db.DB
}

func NewMySQL(database *db.DB) *MySQL {
	return &MySQL{db: database}
}

func (s *MySQL) Create(ctx context.Context, sub model.Subscriber) (bool, error) {
	var affected int64
	execFn := metrics.DBExecObserver("insert_subscriber", func(c context.Context) error {
		// INSERT IGNORE makes creation conditional on the primary key, so a
		// concurrent duplicate subscribe cannot produce two welcome messages.
		res, err := s.db.ExecContext(c,
			`INSERT IGNORE INTO subscribers (phone_number, subscribed_at) VALUES (?, ?)`,
			sub.PhoneNumber, sub.SubscribedAt,
		)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err := execFn(ctx); err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *MySQL) Delete(ctx context.Context, phoneNumber string) (bool, error) {
	var affected int64
	execFn := metrics.DBExecObserver("delete_subscriber", func(c context.Context) error {
		res, err := s.db.ExecContext(c,
			`DELETE FROM subscribers WHERE phone_number = ?`, phoneNumber,
		)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err := execFn(ctx); err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *MySQL) Exists(ctx context.Context, phoneNumber string) (bool, error) {
	var n int
	queryFn := metrics.DBExecObserver("exists_subscriber", func(c context.Context) error {
		return s.db.GetContext(c, &n,
			`SELECT COUNT(*) FROM subscribers WHERE phone_number = ?`, phoneNumber,
		)
	})
	if err := queryFn(ctx); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *MySQL) All(ctx context.Context) ([]model.Subscriber, error) {
	var subs []model.Subscriber
	queryFn := metrics.DBExecObserver("select_subscribers", func(c context.Context) error {
		return s.db.SelectContext(c, &subs,
			`SELECT phone_number, subscribed_at FROM subscribers`,
		)
	})
	if err := queryFn(ctx); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *MySQL) Count(ctx context.Context) (int, error) {
	var n int
	queryFn := metrics.DBExecObserver("count_subscribers", func(c context.Context) error {
		return s.db.GetContext(c, &n, `SELECT COUNT(*) FROM subscribers`)
	})
	if err := queryFn(ctx); err != nil {
		return 0, err
	}
	return n, nil
}
