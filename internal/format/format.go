package format

// Format identifies one recognized extension unit: either a container
// holding named entries (tar, zip) or a byte-stream transform (everything
// else).
type Format int

const (
	Gzip Format = iota
	Bzip2
	Xz
	Lzma
	Zstd
	Lz4
	Snappy
	Brotli
	Tar
	Zip
)

// IsContainer reports whether the format carries named entries rather than
// a raw byte stream.
func (f Format) IsContainer() bool {
	return f == Tar || f == Zip
}

// Ext returns the canonical extension for the format, without the dot.
func (f Format) Ext() string {
	switch f {
	case Gzip:
		return "gz"
	case Bzip2:
		return "bz2"
	case Xz:
		return "xz"
	case Lzma:
		return "lzma"
	case Zstd:
		return "zst"
	case Lz4:
		return "lz4"
	case Snappy:
		return "sz"
	case Brotli:
		return "br"
	case Tar:
		return "tar"
	case Zip:
		return "zip"
	}
	return "unknown"
}

func (f Format) String() string {
	return "." + f.Ext()
}

// extensions maps every accepted extension text to the formats it stands
// for. Composite aliases like tgz expand to two formats, container first.
var extensions = map[string][]Format{
	"tar":   {Tar},
	"zip":   {Zip},
	"tgz":   {Tar, Gzip},
	"tbz":   {Tar, Bzip2},
	"tbz2":  {Tar, Bzip2},
	"txz":   {Tar, Xz},
	"tlz":   {Tar, Lzma},
	"tlzma": {Tar, Lzma},
	"tzst":  {Tar, Zstd},
	"tlz4":  {Tar, Lz4},
	"tsz":   {Tar, Snappy},
	"gz":    {Gzip},
	"gzip":  {Gzip},
	"bz":    {Bzip2},
	"bz2":   {Bzip2},
	"bzip2": {Bzip2},
	"xz":    {Xz},
	"lz":    {Lzma},
	"lzma":  {Lzma},
	"zst":   {Zstd},
	"zstd":  {Zstd},
	"lz4":   {Lz4},
	"sz":    {Snappy},
	"br":    {Brotli},
}
