package constant

// AsciiArtLogo is the application's ASCII art banner shown on the root help screen.
const AsciiArtLogo = `
     _      __                _
  __| |___ / _|___ _ ___ __ (_)_____ __ __
 / _` + "`" + ` / -_)  _/ -_) '_\ V / | / -_) V  V /
 \__,_\___|_| \___|_|  \_/  |_|\___|\_/\_/
`
