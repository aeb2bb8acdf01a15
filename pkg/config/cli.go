package config

import "github.com/alecthomas/kong"

type Cli struct {
	Version kong.VersionFlag

	LogLevel   string `kong:"name=log-level,env=LOG_LEVEL,default=info,help='Set log level.'"`
	LogJSON    bool   `kong:"name=log-json,env=LOG_JSON,default=false,help='Enable JSON logging output.'"`
	LogCaller  bool   `kong:"name=log-caller,env=LOG_CALLER,default=false,help='Add file:line of the caller to log output.'"`
	LogNoColor bool   `kong:"name=log-nocolor,env=LOG_NOCOLOR,default=false,help='Disable colorized output.'"`

	Yes     bool `kong:"name=yes,short=y,default=false,help='Answer every overwrite question positively.',xor=answer"`
	No      bool `kong:"name=no,short=n,default=false,help='Answer every overwrite question negatively.',xor=answer"`
	Workers int  `kong:"name=workers,default=4,help='Maximum number of archives processed concurrently.'"`

	Compress   CompressCmd   `kong:"cmd,name=compress,aliases=c,help='Compress one or more files or folders into one output file.'"`
	Decompress DecompressCmd `kong:"cmd,name=decompress,aliases=d,help='Decompress one or more files, optionally into another folder.'"`
	List       ListCmd       `kong:"cmd,name=list,aliases=l,help='List the contents of one or more archives.'"`
}

type CompressCmd struct {
	Files  []string `kong:"arg,required,name=files,type=path,help='Files or folders to be compressed.'"`
	Output string   `kong:"arg,required,name=output,type=path,help='Output file. Its extensions select the formats. (eg. files.tar.gz)'"`
}

type DecompressCmd struct {
	Files     []string `kong:"arg,required,name=files,type=existingfile,help='Files to be decompressed.'"`
	OutputDir string   `kong:"name=dir,short=d,type=path,help='Extract into a directory other than the current one.'"`
}

type ListCmd struct {
	Archives []string `kong:"arg,required,name=archives,type=existingfile,help='Archives whose contents should be listed.'"`
}
