package inodefs

// File type bits as used in st_mode. Only the types this file system can store
// are defined.
const (
	S_IFDIR = 0x4000 // 0100 0000 0000 0000
	S_IFREG = 0x8000 // 1000 0000 0000 0000
	S_IFLNK = 0xa000 // 1010 0000 0000 0000
	S_IFMT  = 0xf000
)
