// Package testtypes provides shared fixture types for container tests.
package testtypes

import (
	"context"
	"reflect"
)

var (
	TypeRepo      = reflect.TypeFor[Repo]()
	TypeSQLRepo   = reflect.TypeFor[*SQLRepo]()
	TypeCache     = reflect.TypeFor[Cache]()
	TypeMemCache  = reflect.TypeFor[*MemCache]()
	TypeMailer    = reflect.TypeFor[Mailer]()
	TypeSMTP      = reflect.TypeFor[*SMTPMailer]()
	TypeWorker    = reflect.TypeFor[Worker]()
	TypeJobWorker = reflect.TypeFor[*JobWorker]()
)

// The four fixture interfaces cover the four supported Close signatures.

type Repo interface {
	Find(id string) string
	Close(ctx context.Context) error
}

type Cache interface {
	Get(key string) string
	Close(ctx context.Context)
}

type Mailer interface {
	Send(to string) error
	Close() error
}

type Worker interface {
	Work()
	Close()
}

type SQLRepo struct {
	Closed bool
}

func NewRepo() Repo                 { return &SQLRepo{} }
func NewSQLRepo() *SQLRepo          { return &SQLRepo{} }
func (*SQLRepo) Find(string) string { return "" }

func (r *SQLRepo) Close(context.Context) error {
	r.Closed = true
	return nil
}

type MemCache struct {
	Closed bool
}

func NewCache() Cache               { return &MemCache{} }
func NewMemCache() *MemCache        { return &MemCache{} }
func (*MemCache) Get(string) string { return "" }

func (c *MemCache) Close(context.Context) {
	c.Closed = true
}

type SMTPMailer struct {
	Closed bool
}

func NewMailer() Mailer               { return &SMTPMailer{} }
func NewSMTPMailer() *SMTPMailer      { return &SMTPMailer{} }
func (*SMTPMailer) Send(string) error { return nil }

func (m *SMTPMailer) Close() error {
	m.Closed = true
	return nil
}

type JobWorker struct {
	Repo   Repo
	Closed bool
}

func NewWorker(repo Repo) Worker        { return &JobWorker{Repo: repo} }
func NewJobWorker(repo Repo) *JobWorker { return &JobWorker{Repo: repo} }
func (*JobWorker) Work()                {}

func (w *JobWorker) Close() {
	w.Closed = true
}
