// Package paths translates between VFS resource paths and the locations of
// their materialised copies in the real filesystem (RFS).
//
// A materialised copy lives at
//
//	<repository><folder>{online|offline}<vfsPath>.jsp
//
// and is addressed by the template engine through the web-application
// relative URI
//
//	<folder>{online|offline}<vfsPath>.jsp
//
// The online and offline realms are peer subtrees; a VFS path never maps to
// the same file in both.
//
// # Usage
//
//	repo, err := paths.NewRepository("/srv/webapp", "/WEB-INF/jsp/")
//	if err != nil {
//	    return err
//	}
//
//	repo.RfsPath("/sites/default/index.jsp", paths.Online)
//	// /srv/webapp/WEB-INF/jsp/online/sites/default/index.jsp.jsp
//
//	repo.WebURI("/sites/default/index.jsp", paths.Online)
//	// /WEB-INF/jsp/online/sites/default/index.jsp.jsp
//
// The package also resolves relative template references against the URI of
// the element being rendered (see AbsoluteURI).
package paths
