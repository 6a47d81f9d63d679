package normalize

// Banner is printed when normalization starts.
const Banner = `
        _ _             _ _ _
   __ _(_) |_ _ __ ___ (_) | | __
  / _` + "`" + ` | | __| '_ ` + "`" + ` _ \| | | |/ /
 | (_| | | |_| | | | | | | |   <
  \__, |_|\__|_| |_| |_|_|_|_|\_\
  |___/
`
