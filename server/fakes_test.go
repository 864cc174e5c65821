package server

import (
	"context"
	"regexp"
	"sort"
	"time"

	"discofm/model"
	"discofm/repository"
	"discofm/store/query"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// The fake repositories back the handler tests with in-memory slices. They
// evaluate query.Filter the same way the Mongo layer does, via Matches on a
// document map, so filter construction and handler logic are tested together.

func trackDoc(t model.Track) map[string]interface{} {
	return map[string]interface{}{
		"id":               t.TrackID,
		"name":             t.Name,
		"album_id":         t.AlbumID,
		"track_number":     t.TrackNumber,
		"uri":              t.URI,
		"acousticness":     t.Acousticness,
		"danceability":     t.Danceability,
		"energy":           t.Energy,
		"instrumentalness": t.Instrumentalness,
		"liveness":         t.Liveness,
		"loudness":         t.Loudness,
		"speechiness":      t.Speechiness,
		"tempo":            t.Tempo,
		"valence":          t.Valence,
		"popularity":       t.Popularity,
		"duration_ms":      t.DurationMs,
		"is_visible":       t.IsVisible,
	}
}

func albumDoc(a model.Album) map[string]interface{} {
	return map[string]interface{}{
		"_id":          a.ID,
		"album_name":   a.AlbumName,
		"release_date": a.ReleaseDate,
		"is_visible":   a.IsVisible,
	}
}

func docLess(a, b interface{}) bool {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		return av < bv
	case int:
		bv, _ := b.(int)
		return av < bv
	case float64:
		bv, _ := b.(float64)
		return av < bv
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Before(bv)
	default:
		return false
	}
}

func applyPaging[T any](items []T, filter *query.Filter) []T {
	if filter.Skip > 0 {
		if filter.Skip >= int64(len(items)) {
			return nil
		}
		items = items[filter.Skip:]
	}
	if filter.Limit > 0 && filter.Limit < int64(len(items)) {
		items = items[:filter.Limit]
	}
	return items
}

type fakeTrackRepo struct {
	tracks []model.Track
}

func (r *fakeTrackRepo) Create(ctx context.Context, track *model.Track) error {
	if track.OID.IsZero() {
		track.OID = primitive.NewObjectID()
	}
	r.tracks = append(r.tracks, *track)
	return nil
}

func (r *fakeTrackRepo) GetByTrackID(ctx context.Context, id string) (*model.Track, error) {
	for _, track := range r.tracks {
		if track.TrackID == id {
			t := track
			return &t, nil
		}
	}
	return nil, nil
}

func (r *fakeTrackRepo) Find(ctx context.Context, filter *query.Filter) ([]model.Track, error) {
	matched := make([]model.Track, 0)
	for _, track := range r.tracks {
		if filter.Matches(trackDoc(track)) {
			matched = append(matched, track)
		}
	}
	if filter.SortBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			less := docLess(trackDoc(matched[i])[filter.SortBy], trackDoc(matched[j])[filter.SortBy])
			if filter.SortDesc {
				return docLess(trackDoc(matched[j])[filter.SortBy], trackDoc(matched[i])[filter.SortBy])
			}
			return less
		})
	}
	return applyPaging(matched, filter), nil
}

func (r *fakeTrackRepo) Count(ctx context.Context, filter *query.Filter) (int64, error) {
	var count int64
	for _, track := range r.tracks {
		if filter.Matches(trackDoc(track)) {
			count++
		}
	}
	return count, nil
}

func (r *fakeTrackRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	for i := range r.tracks {
		if r.tracks[i].TrackID != id {
			continue
		}
		applyTrackFields(&r.tracks[i], fields)
		return nil
	}
	return mongo.ErrNoDocuments
}

func applyTrackFields(track *model.Track, fields map[string]interface{}) {
	for key, value := range fields {
		switch key {
		case "name":
			track.Name = value.(string)
		case "album_id":
			track.AlbumID = value.(string)
		case "track_number":
			track.TrackNumber = value.(int)
		case "uri":
			track.URI = value.(string)
		case "acousticness":
			track.Acousticness = value.(float64)
		case "danceability":
			track.Danceability = value.(float64)
		case "energy":
			track.Energy = value.(float64)
		case "instrumentalness":
			track.Instrumentalness = value.(float64)
		case "liveness":
			track.Liveness = value.(float64)
		case "loudness":
			track.Loudness = value.(float64)
		case "speechiness":
			track.Speechiness = value.(float64)
		case "tempo":
			track.Tempo = value.(float64)
		case "valence":
			track.Valence = value.(float64)
		case "popularity":
			track.Popularity = value.(int)
		case "duration_ms":
			track.DurationMs = value.(int)
		case "is_visible":
			track.IsVisible = value.(bool)
		}
	}
}

func (r *fakeTrackRepo) SetVisibility(ctx context.Context, id string, visible bool) error {
	return r.Update(ctx, id, map[string]interface{}{"is_visible": visible})
}

func (r *fakeTrackRepo) Delete(ctx context.Context, id string) (int64, error) {
	for i := range r.tracks {
		if r.tracks[i].TrackID == id {
			r.tracks = append(r.tracks[:i], r.tracks[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeTrackRepo) CountByAlbum(ctx context.Context, albumID string) (int64, error) {
	var count int64
	for _, track := range r.tracks {
		if track.AlbumID == albumID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTrackRepo) DeleteByAlbum(ctx context.Context, albumID string) (int64, error) {
	kept := r.tracks[:0]
	var deleted int64
	for _, track := range r.tracks {
		if track.AlbumID == albumID {
			deleted++
			continue
		}
		kept = append(kept, track)
	}
	r.tracks = kept
	return deleted, nil
}

type fakeAlbumRepo struct {
	albums []model.Album
}

func (r *fakeAlbumRepo) Create(ctx context.Context, album *model.Album) error {
	r.albums = append(r.albums, *album)
	return nil
}

func (r *fakeAlbumRepo) GetByID(ctx context.Context, id string) (*model.Album, error) {
	for _, album := range r.albums {
		if album.ID == id {
			a := album
			return &a, nil
		}
	}
	return nil, nil
}

func (r *fakeAlbumRepo) GetByIDs(ctx context.Context, ids []string) (map[string]model.Album, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	albums := make(map[string]model.Album, len(ids))
	for _, album := range r.albums {
		if want[album.ID] {
			albums[album.ID] = album
		}
	}
	return albums, nil
}

func (r *fakeAlbumRepo) Find(ctx context.Context, filter *query.Filter) ([]model.Album, error) {
	matched := make([]model.Album, 0)
	for _, album := range r.albums {
		if filter.Matches(albumDoc(album)) {
			matched = append(matched, album)
		}
	}
	if filter.SortBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			if filter.SortDesc {
				return docLess(albumDoc(matched[j])[filter.SortBy], albumDoc(matched[i])[filter.SortBy])
			}
			return docLess(albumDoc(matched[i])[filter.SortBy], albumDoc(matched[j])[filter.SortBy])
		})
	}
	return applyPaging(matched, filter), nil
}

func (r *fakeAlbumRepo) Count(ctx context.Context, filter *query.Filter) (int64, error) {
	var count int64
	for _, album := range r.albums {
		if filter.Matches(albumDoc(album)) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAlbumRepo) ResolveIDs(ctx context.Context, tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	patterns := make([]*regexp.Regexp, 0, len(tokens))
	for _, token := range tokens {
		patterns = append(patterns, regexp.MustCompile("(?i)^"+regexp.QuoteMeta(token)+"$"))
	}
	ids := make([]string, 0, len(tokens))
	for _, album := range r.albums {
		matched := false
		for _, token := range tokens {
			if album.ID == token {
				matched = true
				break
			}
		}
		if !matched {
			for _, pattern := range patterns {
				if pattern.MatchString(album.AlbumName) {
					matched = true
					break
				}
			}
		}
		if matched {
			ids = append(ids, album.ID)
		}
	}
	return ids, nil
}

func (r *fakeAlbumRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	for i := range r.albums {
		if r.albums[i].ID != id {
			continue
		}
		for key, value := range fields {
			switch key {
			case "album_name":
				r.albums[i].AlbumName = value.(string)
			case "release_date":
				r.albums[i].ReleaseDate = value.(time.Time)
			case "is_visible":
				r.albums[i].IsVisible = value.(bool)
			}
		}
		return nil
	}
	return mongo.ErrNoDocuments
}

func (r *fakeAlbumRepo) SetVisibility(ctx context.Context, id string, visible bool) error {
	return r.Update(ctx, id, map[string]interface{}{"is_visible": visible})
}

func (r *fakeAlbumRepo) Delete(ctx context.Context, id string) (int64, error) {
	for i := range r.albums {
		if r.albums[i].ID == id {
			r.albums = append(r.albums[:i], r.albums[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type fakeUserRepo struct {
	users []model.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) (primitive.ObjectID, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicateUser
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	r.users = append(r.users, *user)
	return user.ID, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}
