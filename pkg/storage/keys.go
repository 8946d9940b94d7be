package storage

const (
	KeyLastUpdatedAnime   = "lastUpdatedAnime"
	KeyLastUpdatedEpisode = "lastUpdatedEpisode"
	KeyLastUpdateTime     = "lastUpdateTime"
	KeyUpdateHistory      = "updateHistory"
	KeyAccessToken        = "accessToken"
	KeyUsername           = "username"

	seasonKeyPrefix = "anime_seasons_"
)

// SeasonKey is the key holding the season offset cache of a series.
func SeasonKey(seriesID string) string {
	return seasonKeyPrefix + seriesID
}
