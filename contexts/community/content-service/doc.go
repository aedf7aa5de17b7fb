// Package content is the community content bounded context: posts and the
// comments attached to them. Any authenticated user can publish; editing and
// deletion are gated to the owner or a teacher, and deleting a post removes
// its comments with it.
package content
