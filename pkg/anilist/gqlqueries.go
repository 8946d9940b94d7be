package anilist

var viewerQuery = `
query {
  Viewer {
    id
    name
  }
}
`

var searchAnimeQuery = `
query ($search: String) {
  Page (page: 1, perPage: 5) {
    media (search: $search, type: ANIME) {
      id
      title {
        romaji
        english
        native
      }
      status
      episodes
    }
  }
}
`

var saveProgressMutation = `
mutation ($mediaId: Int, $progress: Int) {
  SaveMediaListEntry (mediaId: $mediaId, progress: $progress, status: CURRENT) {
    id
    progress
    status
  }
}
`
