package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/model"
	"github.com/sidago/crm-api/internal/repository"
)

// CommentStore persists company comments.
type CommentStore interface {
	Create(ctx context.Context, c *model.CompanyComment) error
	GetByID(ctx context.Context, id uint64) (model.CompanyComment, error)
	ListByCompany(ctx context.Context, companyID uint64) ([]model.CompanyComment, error)
	UpdateMessage(ctx context.Context, id uint64, message string) error
	Delete(ctx context.Context, id uint64) error
}

// CommentService manages company comments. Only the author may change or
// remove a comment; a nil actor is treated as a system call and bypasses
// the check.
type CommentService struct {
	tx        TxRunner
	comments  CommentStore
	companies CompanyStore
	log       *zap.Logger
}

// NewCommentService returns a CommentService.
func NewCommentService(tx TxRunner, comments CommentStore, companies CompanyStore, log *zap.Logger) *CommentService {
	return &CommentService{tx: tx, comments: comments, companies: companies, log: log}
}

// Create stores message on companyID as written by actor.
func (s *CommentService) Create(ctx context.Context, companyID uint64, message string, actor *model.User) (model.CompanyComment, error) {
	if strings.TrimSpace(message) == "" {
		return model.CompanyComment{}, ErrEmptyMessage
	}
	c := model.CompanyComment{CompanyID: companyID, UserID: actorID(actor), Comment: message}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.companies.GetByID(ctx, companyID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCompanyNotFound
			}
			return err
		}
		return s.comments.Create(ctx, &c)
	})
	if err != nil {
		return model.CompanyComment{}, err
	}
	return c, nil
}

// ListByCompany returns the comments of a company, newest first. An unknown
// company yields an empty list.
func (s *CommentService) ListByCompany(ctx context.Context, companyID uint64) ([]model.CompanyComment, error) {
	return s.comments.ListByCompany(ctx, companyID)
}

// ListByCompanyName resolves the company by exact name first.
func (s *CommentService) ListByCompanyName(ctx context.Context, name string) ([]model.CompanyComment, error) {
	company, err := s.companies.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return s.comments.ListByCompany(ctx, company.ID)
}

func (s *CommentService) Get(ctx context.Context, id uint64) (model.CompanyComment, error) {
	c, err := s.comments.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.CompanyComment{}, ErrCommentNotFound
	}
	return c, err
}

// Update replaces the text of comment id. Only its author may do so.
func (s *CommentService) Update(ctx context.Context, id uint64, message string, actor *model.User) (model.CompanyComment, error) {
	if strings.TrimSpace(message) == "" {
		return model.CompanyComment{}, ErrEmptyMessage
	}
	var updated model.CompanyComment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.authored(ctx, id, actor); err != nil {
			return err
		}
		if err := s.comments.UpdateMessage(ctx, id, message); err != nil {
			return err
		}
		var err error
		updated, err = s.comments.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return model.CompanyComment{}, err
	}
	return updated, nil
}

// Delete removes comment id. Only its author may do so.
func (s *CommentService) Delete(ctx context.Context, id uint64, actor *model.User) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.authored(ctx, id, actor); err != nil {
			return err
		}
		if err := s.comments.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCommentNotFound
			}
			return err
		}
		return nil
	})
}

// authored loads comment id and checks that actor wrote it.
func (s *CommentService) authored(ctx context.Context, id uint64, actor *model.User) (model.CompanyComment, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return model.CompanyComment{}, err
	}
	if actor != nil && !c.AuthoredBy(actor.ID) {
		s.log.Info("comment mutation refused", zap.Uint64("comment_id", id), zap.Uint64("user_id", actor.ID))
		return model.CompanyComment{}, ErrForbidden
	}
	return c, nil
}
