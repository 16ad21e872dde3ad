package repository

import (
	"context"
	"database/sql"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"tutorial-service/entities"
)

// TutorialRepository is the data access contract for tutorials. FindById returns
// gorm.ErrRecordNotFound when the id is absent.
type TutorialRepository interface {
	GetDB() *gorm.DB
	FindAll(ctx context.Context) ([]*entities.Tutorial, error)
	FindByTitleContaining(ctx context.Context, title string) ([]*entities.Tutorial, error)
	FindById(ctx context.Context, id int64) (*entities.Tutorial, error)
	FindByPublished(ctx context.Context, published bool) ([]*entities.Tutorial, error)
	Save(ctx context.Context, tutorial *entities.Tutorial) (*entities.Tutorial, error)
	DeleteById(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB, logLevel logger.LogLevel) (TutorialRepository, error) {
	return newRepo(postgres.New(postgres.Config{Conn: db}), logLevel)
}

func newRepo(dialector gorm.Dialector, logLevel logger.LogLevel) (TutorialRepository, error) {
	gormDB, err := gorm.Open(dialector,
		&gorm.Config{
			Logger:                 logger.Default.LogMode(logLevel),
			SkipDefaultTransaction: true,
		},
	)
	if err != nil {
		return nil, err
	}
	return &repo{
		db: gormDB,
	}, nil
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

func (r *repo) FindAll(ctx context.Context) ([]*entities.Tutorial, error) {
	var tutorials []*entities.Tutorial
	err := r.GetDB().WithContext(ctx).Find(&tutorials).Error
	if err != nil {
		return nil, err
	}
	return tutorials, nil
}

func (r *repo) FindByTitleContaining(ctx context.Context, title string) ([]*entities.Tutorial, error) {
	var tutorials []*entities.Tutorial
	err := r.GetDB().WithContext(ctx).
		Where(`title LIKE ? ESCAPE '\'`, "%"+escapeLike(title)+"%").
		Find(&tutorials).Error
	if err != nil {
		return nil, err
	}
	return tutorials, nil
}

func (r *repo) FindById(ctx context.Context, id int64) (*entities.Tutorial, error) {
	tutorial := &entities.Tutorial{}
	err := r.GetDB().WithContext(ctx).First(tutorial, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return tutorial, nil
}

func (r *repo) FindByPublished(ctx context.Context, published bool) ([]*entities.Tutorial, error) {
	var tutorials []*entities.Tutorial
	err := r.GetDB().WithContext(ctx).Where("published = ?", published).Find(&tutorials).Error
	if err != nil {
		return nil, err
	}
	return tutorials, nil
}

// Save updates the row with tutorial.ID when it exists, otherwise inserts it.
// A zero ID always inserts and receives a database-assigned id.
func (r *repo) Save(ctx context.Context, tutorial *entities.Tutorial) (*entities.Tutorial, error) {
	err := r.GetDB().WithContext(ctx).Save(tutorial).Error
	if err != nil {
		return nil, err
	}
	return tutorial, nil
}

func (r *repo) DeleteById(ctx context.Context, id int64) error {
	return r.GetDB().WithContext(ctx).Delete(&entities.Tutorial{}, "id = ?", id).Error
}

func (r *repo) DeleteAll(ctx context.Context) error {
	return r.GetDB().WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entities.Tutorial{}).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
