package domain

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

// CREATE TABLE public.artworks (
//     id                BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     title             TEXT,
//     artist_id         BIGINT,
//     medium            TEXT,
//     style             TEXT,
//     price             NUMERIC,
//     color_description TEXT,
//     color_tags        JSONB,
//     view_count        BIGINT DEFAULT 0,
//     like_count        BIGINT DEFAULT 0,
//     save_count        BIGINT DEFAULT 0,
//     creation_year     INT,
//     is_available      BOOLEAN DEFAULT TRUE,
//     created_at        TIMESTAMPTZ DEFAULT NOW()
// );

var ErrArtworkNotFound = errors.New("artwork not found")

// Artwork is a catalog item that can be recommended.
type Artwork struct {
	ID               uint64                      `gorm:"primaryKey;autoIncrement" json:"id" yaml:"id"`
	Title            string                      `gorm:"column:title;type:text" json:"title" yaml:"title"`
	ArtistID         uint64                      `gorm:"column:artist_id" json:"artist_id" yaml:"artist_id"`
	Medium           string                      `gorm:"column:medium;type:text" json:"medium" yaml:"medium"`
	Style            string                      `gorm:"column:style;type:text" json:"style" yaml:"style"`
	Price            float64                     `gorm:"column:price;type:numeric" json:"price" yaml:"price"`
	ColorDescription string                      `gorm:"column:color_description;type:text" json:"color_description" yaml:"color_description"`
	ColorTags        datatypes.JSONSlice[string] `gorm:"column:color_tags;type:jsonb" json:"color_tags" yaml:"color_tags"`
	ViewCount        int64                       `gorm:"column:view_count;default:0" json:"view_count" yaml:"view_count"`
	LikeCount        int64                       `gorm:"column:like_count;default:0" json:"like_count" yaml:"like_count"`
	SaveCount        int64                       `gorm:"column:save_count;default:0" json:"save_count" yaml:"save_count"`
	CreationYear     int                         `gorm:"column:creation_year" json:"creation_year" yaml:"creation_year"`
	IsAvailable      bool                        `gorm:"column:is_available;default:true" json:"is_available" yaml:"is_available"`
	CreatedAt        time.Time                   `gorm:"column:created_at" json:"created_at" yaml:"created_at"`
}

func (Artwork) TableName() string {
	return "artworks"
}
