package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cinestelar/cinarr/internal/config"
	"github.com/cinestelar/cinarr/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	baseURL      = "https://api.themoviedb.org/3"
	imageBaseURL = "https://image.tmdb.org/t/p/w500"

	// searchLimit caps how many ranked candidates a search returns
	searchLimit = 5
)

// Client handles communication with the TMDB API. Search failures are
// absorbed per language attempt and reported as zero results so the scan
// loop survives metadata-service outages.
type Client struct {
	baseURL      string
	apiKey       string
	primaryLang  string
	fallbackLang string
	httpClient   *http.Client
	logger       *logrus.Logger
}

// NewClient creates a new TMDB client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB API key is required")
	}

	return &Client{
		baseURL:      baseURL,
		apiKey:       cfg.TMDBAPIKey,
		primaryLang:  cfg.TMDBLanguage,
		fallbackLang: cfg.TMDBFallbackLang,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}, nil
}

// get performs a GET with retries. Server errors retry, client errors
// are permanent.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	params.Set("api_key", c.apiKey)
	fullURL := c.baseURL + path + "?" + params.Encode()

	return utils.Retry(ctx, 2, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return utils.Permanent(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("TMDB API returned status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return utils.Permanent(fmt.Errorf("TMDB API returned status %d: %s", resp.StatusCode, string(body)))
		}

		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return utils.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	})
}

// SearchMovie queries the movie catalog and returns ranked candidates.
// The primary language is tried first (dropping the year filter if it
// yields nothing), then the fallback language fills the list up to the
// limit, deduplicated by TMDB id.
func (c *Client) SearchMovie(ctx context.Context, query string, year int) []Candidate {
	candidates := c.searchMovieLang(ctx, query, year, c.primaryLang)
	if len(candidates) == 0 && year > 0 {
		candidates = c.searchMovieLang(ctx, query, 0, c.primaryLang)
	}

	if len(candidates) < searchLimit {
		seen := make(map[int64]bool, len(candidates))
		for _, cand := range candidates {
			seen[cand.TMDBID] = true
		}
		for _, cand := range c.searchMovieLang(ctx, query, year, c.fallbackLang) {
			if !seen[cand.TMDBID] {
				candidates = append(candidates, cand)
				seen[cand.TMDBID] = true
			}
		}
	}

	candidates = rankCandidates(query, year, candidates)
	if len(candidates) > searchLimit {
		candidates = candidates[:searchLimit]
	}
	return candidates
}

func (c *Client) searchMovieLang(ctx context.Context, query string, year int, language string) []Candidate {
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", language)
	params.Set("page", "1")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	var response movieSearchResponse
	if err := c.get(ctx, "/search/movie", params, &response); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"query":    query,
			"language": language,
		}).Warn("Movie search failed")
		return nil
	}

	candidates := make([]Candidate, 0, len(response.Results))
	for _, r := range response.Results {
		candidates = append(candidates, Candidate{
			TMDBID:        r.ID,
			Title:         r.Title,
			OriginalTitle: r.OriginalTitle,
			Year:          releaseYear(r.ReleaseDate),
			Overview:      r.Overview,
			PosterURL:     imageURL(r.PosterPath),
			BackdropURL:   imageURL(r.BackdropPath),
			VoteAverage:   r.VoteAverage,
			Popularity:    r.Popularity,
			GenreIDs:      r.GenreIDs,
		})
	}
	return candidates
}

// SearchTV queries the show catalog with the same language strategy as
// SearchMovie.
func (c *Client) SearchTV(ctx context.Context, query string, year int) []Candidate {
	candidates := c.searchTVLang(ctx, query, year, c.primaryLang)
	if len(candidates) == 0 && year > 0 {
		candidates = c.searchTVLang(ctx, query, 0, c.primaryLang)
	}

	if len(candidates) < searchLimit {
		seen := make(map[int64]bool, len(candidates))
		for _, cand := range candidates {
			seen[cand.TMDBID] = true
		}
		for _, cand := range c.searchTVLang(ctx, query, year, c.fallbackLang) {
			if !seen[cand.TMDBID] {
				candidates = append(candidates, cand)
				seen[cand.TMDBID] = true
			}
		}
	}

	candidates = rankCandidates(query, year, candidates)
	if len(candidates) > searchLimit {
		candidates = candidates[:searchLimit]
	}
	return candidates
}

func (c *Client) searchTVLang(ctx context.Context, query string, year int, language string) []Candidate {
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", language)
	params.Set("page", "1")
	if year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(year))
	}

	var response tvSearchResponse
	if err := c.get(ctx, "/search/tv", params, &response); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"query":    query,
			"language": language,
		}).Warn("TV search failed")
		return nil
	}

	candidates := make([]Candidate, 0, len(response.Results))
	for _, r := range response.Results {
		candidates = append(candidates, Candidate{
			TMDBID:        r.ID,
			Title:         r.Name,
			OriginalTitle: r.OriginalName,
			Year:          releaseYear(r.FirstAirDate),
			Overview:      r.Overview,
			PosterURL:     imageURL(r.PosterPath),
			BackdropURL:   imageURL(r.BackdropPath),
			VoteAverage:   r.VoteAverage,
			Popularity:    r.Popularity,
			GenreIDs:      r.GenreIDs,
		})
	}
	return candidates
}

// GetMovieDetails fetches runtime and full genre names for one movie
func (c *Client) GetMovieDetails(ctx context.Context, tmdbID int64) (*MovieDetails, error) {
	params := url.Values{}
	params.Set("language", c.primaryLang)

	var response movieDetailsResponse
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(tmdbID, 10), params, &response); err != nil {
		return nil, err
	}

	return &MovieDetails{
		TMDBID:        response.ID,
		Title:         response.Title,
		OriginalTitle: response.OriginalTitle,
		Year:          releaseYear(response.ReleaseDate),
		Overview:      response.Overview,
		PosterURL:     imageURL(response.PosterPath),
		BackdropURL:   imageURL(response.BackdropPath),
		VoteAverage:   response.VoteAverage,
		Runtime:       response.Runtime,
		Genres:        genreNames(response.Genres),
		Tagline:       response.Tagline,
	}, nil
}

// GetTVDetails fetches season count and status for one show
func (c *Client) GetTVDetails(ctx context.Context, tmdbID int64) (*TVDetails, error) {
	params := url.Values{}
	params.Set("language", c.primaryLang)

	var response tvDetailsResponse
	if err := c.get(ctx, "/tv/"+strconv.FormatInt(tmdbID, 10), params, &response); err != nil {
		return nil, err
	}

	return &TVDetails{
		TMDBID:       response.ID,
		Name:         response.Name,
		OriginalName: response.OriginalName,
		Year:         releaseYear(response.FirstAirDate),
		Overview:     response.Overview,
		PosterURL:    imageURL(response.PosterPath),
		BackdropURL:  imageURL(response.BackdropPath),
		VoteAverage:  response.VoteAverage,
		Genres:       genreNames(response.Genres),
		SeasonCount:  response.NumberOfSeasons,
		Status:       response.Status,
	}, nil
}

// GetSeasonDetails fetches the per-episode records of one season
func (c *Client) GetSeasonDetails(ctx context.Context, tmdbID int64, season int) ([]SeasonEpisode, error) {
	params := url.Values{}
	params.Set("language", c.primaryLang)

	var response seasonResponse
	path := fmt.Sprintf("/tv/%d/season/%d", tmdbID, season)
	if err := c.get(ctx, path, params, &response); err != nil {
		return nil, err
	}

	episodes := make([]SeasonEpisode, 0, len(response.Episodes))
	for _, ep := range response.Episodes {
		episodes = append(episodes, SeasonEpisode{
			EpisodeNumber: ep.EpisodeNumber,
			Name:          ep.Name,
			Overview:      ep.Overview,
			AirDate:       ep.AirDate,
			Runtime:       ep.Runtime,
			StillURL:      imageURL(ep.StillPath),
		})
	}
	return episodes, nil
}

func imageURL(path string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + path
}

func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func genreNames(genres []genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}
