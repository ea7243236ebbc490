package tmdb

// Candidate is one ranked search result from the metadata catalog
type Candidate struct {
	TMDBID        int64
	Title         string
	OriginalTitle string
	Year          int
	Overview      string
	PosterURL     string
	BackdropURL   string
	VoteAverage   float64
	Popularity    float64
	GenreIDs      []int64
	Confidence    float64 // [0, 100], see confidence.go
}

// MovieDetails adds the fields only available from the per-title lookup
type MovieDetails struct {
	TMDBID        int64
	Title         string
	OriginalTitle string
	Year          int
	Overview      string
	PosterURL     string
	BackdropURL   string
	VoteAverage   float64
	Runtime       int
	Genres        []string
	Tagline       string
}

// TVDetails describes a show from the per-title lookup
type TVDetails struct {
	TMDBID       int64
	Name         string
	OriginalName string
	Year         int
	Overview     string
	PosterURL    string
	BackdropURL  string
	VoteAverage  float64
	Genres       []string
	SeasonCount  int
	Status       string
}

// SeasonEpisode is one episode record from a season lookup
type SeasonEpisode struct {
	EpisodeNumber int
	Name          string
	Overview      string
	AirDate       string
	Runtime       int
	StillURL      string
}

// Raw API payloads

type movieResult struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	VoteAverage   float64 `json:"vote_average"`
	Popularity    float64 `json:"popularity"`
	GenreIDs      []int64 `json:"genre_ids"`
}

type movieSearchResponse struct {
	Results []movieResult `json:"results"`
}

type tvResult struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	OriginalName string  `json:"original_name"`
	FirstAirDate string  `json:"first_air_date"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int64 `json:"genre_ids"`
}

type tvSearchResponse struct {
	Results []tvResult `json:"results"`
}

type genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type movieDetailsResponse struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	VoteAverage   float64 `json:"vote_average"`
	Runtime       int     `json:"runtime"`
	Genres        []genre `json:"genres"`
	Tagline       string  `json:"tagline"`
}

type tvDetailsResponse struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	OriginalName    string  `json:"original_name"`
	FirstAirDate    string  `json:"first_air_date"`
	Overview        string  `json:"overview"`
	PosterPath      string  `json:"poster_path"`
	BackdropPath    string  `json:"backdrop_path"`
	VoteAverage     float64 `json:"vote_average"`
	Genres          []genre `json:"genres"`
	NumberOfSeasons int     `json:"number_of_seasons"`
	Status          string  `json:"status"`
}

type seasonResponse struct {
	Episodes []struct {
		EpisodeNumber int    `json:"episode_number"`
		Name          string `json:"name"`
		Overview      string `json:"overview"`
		AirDate       string `json:"air_date"`
		Runtime       int    `json:"runtime"`
		StillPath     string `json:"still_path"`
	} `json:"episodes"`
}
