// Spotify API implementation of [Service]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/rekordsync/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Spotify caps playlist item mutations at 100 per request.
	spotifyBatchSize = 100

	// Token exchange against accounts.spotify.com can hang on a dropped connection;
	// bound it independently of the caller's context.
	spotifyAuthTimeout = 30 * time.Second
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Product     string `json:"product"` // premium, free, etc.
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	URI         string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Type       string          `json:"type"`
	URI        string          `json:"uri"`
}

type owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type trackTotals struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Owner  owner       `json:"owner"`
	Public bool        `json:"public"`
	Tracks trackTotals `json:"tracks"`
	URI    string      `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifySimplePlaylist `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylistTracks represents a page of a playlist's items.
type SpotifyPaginatedPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifyService implements [Service] for the Spotify Web API.
//
// Uses [oauth2] for authentication and a [rate.Limiter] to stay under Spotify's request
// ceiling during large syncs.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	userID     string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:8888/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"playlist-read-private",
			"playlist-modify-public",
			"playlist-modify-private",
			"user-library-read",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(10), 10),
	}, nil
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an
// "access_token" or "auth_code" in credentials, then resolves the user profile so
// playlist creation knows the owner id.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken}
		s.httpClient = s.config.Client(ctx, s.token)
		return s.resolveUser(ctx)
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		exchangeCtx, cancel := context.WithTimeout(ctx, spotifyAuthTimeout)
		defer cancel()

		token, err := s.config.Exchange(exchangeCtx, authCode)
		if err != nil {
			return fmt.Errorf("%w: code exchange: %v", shared.ErrAuthFailed, err)
		}
		s.token = token
		s.httpClient = s.config.Client(ctx, s.token)
		return s.resolveUser(ctx)
	}

	return fmt.Errorf("%w: access_token or auth_code", shared.ErrMissingCredentials)
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// OAuthConfig exposes the underlying OAuth2 configuration for the local callback flow.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// UserID returns the authenticated user's id.
func (s *SpotifyService) UserID() string { return s.userID }

func (s *SpotifyService) resolveUser(ctx context.Context) error {
	user, err := s.UserProfile(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve user profile: %w", err)
	}
	s.userID = user.ID
	return nil
}

// doRequest performs an authenticated, rate-limited HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	apiURL := spotifyBaseURL + endpoint

	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s", shared.ErrPlaylistNotFound, method, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d from %s %s", shared.ErrAPIRequest, resp.StatusCode, method, endpoint)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserPlaylists retrieves one page of the current user's playlists.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*SpotifyPaginatedPlaylists, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

	var response SpotifyPaginatedPlaylists
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// PlaylistItems retrieves one page of a playlist's items.
func (s *SpotifyService) PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*SpotifyPaginatedPlaylistTracks, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", playlistID, limit, offset)

	var response SpotifyPaginatedPlaylistTracks
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// Service interface implementation

// GetPlaylists retrieves every playlist owned by the authenticated user. Followed
// playlists belonging to other users are skipped; the sync must never touch those.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]Playlist, error) {
	var playlists []Playlist
	limit := 50
	offset := 0

	for {
		response, err := s.UserPlaylists(ctx, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, sp := range response.Items {
			if s.userID != "" && sp.Owner.ID != s.userID {
				continue
			}
			playlists = append(playlists, Playlist{
				ID:         sp.ID,
				Name:       sp.Name,
				OwnerID:    sp.Owner.ID,
				TrackCount: sp.Tracks.Total,
				Public:     sp.Public,
			})
		}

		if response.Next == nil {
			break
		}
		offset += limit
	}

	return playlists, nil
}

// GetPlaylistTracks retrieves every track in a playlist, following pagination.
func (s *SpotifyService) GetPlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	var tracks []Track
	limit := 50
	offset := 0

	for {
		response, err := s.PlaylistItems(ctx, playlistID, limit, offset)
		if err != nil {
			return nil, err
		}

		for _, item := range response.Items {
			// Local files and episodes have no usable id.
			if item.Track.ID == "" || (item.Track.Type != "" && item.Track.Type != "track") {
				continue
			}
			tracks = append(tracks, convertTrack(item.Track))
		}

		if response.Next == nil {
			break
		}
		offset += limit
	}

	return tracks, nil
}

// CreatePlaylist creates a new private playlist for the authenticated user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name string) (*Playlist, error) {
	if s.userID == "" {
		return nil, fmt.Errorf("%w: user id unresolved", shared.ErrNotAuthenticated)
	}

	body := map[string]any{"name": name, "public": false}
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(s.userID))

	var created SpotifySimplePlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, fmt.Errorf("failed to create playlist %q: %w", name, err)
	}

	return &Playlist{
		ID:      created.ID,
		Name:    created.Name,
		OwnerID: created.Owner.ID,
		Public:  created.Public,
	}, nil
}

// AddTracks adds tracks to a playlist in batches of 100.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)

	for _, batch := range batchIDs(trackIDs, spotifyBatchSize) {
		body := map[string]any{"uris": trackURIs(batch)}
		if err := s.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
			return fmt.Errorf("failed to add tracks to playlist %s: %w", playlistID, err)
		}
	}
	return nil
}

// RemoveTracks removes all occurrences of the given tracks, in batches of 100.
func (s *SpotifyService) RemoveTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)

	for _, batch := range batchIDs(trackIDs, spotifyBatchSize) {
		items := make([]map[string]string, len(batch))
		for i, uri := range trackURIs(batch) {
			items[i] = map[string]string{"uri": uri}
		}
		body := map[string]any{"tracks": items}
		if err := s.doRequest(ctx, http.MethodDelete, endpoint, body, nil); err != nil {
			return fmt.Errorf("failed to remove tracks from playlist %s: %w", playlistID, err)
		}
	}
	return nil
}

// DeletePlaylist unfollows a playlist, which removes it from the user's account.
func (s *SpotifyService) DeletePlaylist(ctx context.Context, playlistID string) error {
	endpoint := fmt.Sprintf("/playlists/%s/followers", playlistID)
	if err := s.doRequest(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return fmt.Errorf("failed to delete playlist %s: %w", playlistID, err)
	}
	return nil
}

// SearchTrack searches for a track by title and artists and returns the first result.
// A search with no hits returns shared.ErrTrackNotFound.
func (s *SpotifyService) SearchTrack(ctx context.Context, title, artists string) (*Track, error) {
	tracks, err := s.SearchTracks(ctx, title, artists, 1)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: %s - %s", shared.ErrTrackNotFound, title, artists)
	}
	return &tracks[0], nil
}

// SearchTracks returns up to limit candidate matches for a title/artists query.
func (s *SpotifyService) SearchTracks(ctx context.Context, title, artists string, limit int) ([]Track, error) {
	if limit <= 0 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	query := fmt.Sprintf("track:%s artist:%s", title, artists)
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=%d", url.QueryEscape(query), limit)

	var response struct {
		Tracks struct {
			Items []SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}

	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]Track, len(response.Tracks.Items))
	for i, item := range response.Tracks.Items {
		tracks[i] = convertTrack(item)
	}
	return tracks, nil
}

func convertTrack(st SpotifyTrack) Track {
	track := Track{
		ID:         st.ID,
		Title:      st.Name,
		Album:      st.Album.Name,
		DurationMS: st.DurationMS,
		URI:        st.URI,
	}
	if len(st.Artists) > 0 {
		track.Artist = st.Artists[0].Name
	}
	return track
}

func trackURIs(ids []string) []string {
	uris := make([]string, len(ids))
	for i, id := range ids {
		uris[i] = "spotify:track:" + id
	}
	return uris
}

func batchIDs(ids []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}
