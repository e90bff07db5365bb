package cli

// Export internal functions for testing.

// RunConfigSet exports runConfigSet for testing.
var RunConfigSet = runConfigSet

// RunConfigGet exports runConfigGet for testing.
var RunConfigGet = runConfigGet

// RunConfigList exports runConfigList for testing.
var RunConfigList = runConfigList

// ClampParallel exports clampParallel for testing.
var ClampParallel = clampParallel

// ParseArticleOptions exports parseArticleOptions for testing.
var ParseArticleOptions = parseArticleOptions

// ArticleFlags exports articleFlags for testing.
type ArticleFlags = articleFlags

// RunArticle exports runArticle for testing.
var RunArticle = runArticle

// DeriveReducedOutputPath exports deriveReducedOutputPath for testing.
var DeriveReducedOutputPath = deriveReducedOutputPath

// ParseTrendingOptions exports parseTrendingOptions for testing.
var ParseTrendingOptions = parseTrendingOptions
