package domain

// ArchiveHit is one search result from the audio archive.
type ArchiveHit struct {
	Identifier string
	Title      string
	Creator    string
}

// ArchiveFile is one file listed in an archive item's metadata.
type ArchiveFile struct {
	Name   string
	Format string
}

// Classification is the top label returned by a zero-shot classifier.
type Classification struct {
	Label string
	Score float64
}
