// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown converts raw chat text into sanitized HTML.
package markdown

// delegateScript is the single click delegate for all rendered output.
// One document-level listener serves every copy button and image modal;
// Attach hands it out at most once per renderer instance.
const delegateScript = `<script>
(function () {
  var COPY_FEEDBACK_MS = 1500;

  function showDialog(modalId) {
    var modal = document.getElementById(modalId);
    if (modal && modal.showModal) {
      modal.showModal();
    }
  }

  document.addEventListener('click', function (event) {
    var target = event.target instanceof Element ? event.target : null;
    if (!target) return;

    var imageTarget = target.closest('.image-modal-trigger');
    if (imageTarget) {
      var modalId = imageTarget.getAttribute('data-modal-id');
      if (modalId) showDialog(modalId);
      return;
    }

    var copyButton = target.closest('.chat-code-copy-button');
    if (!copyButton) return;

    var codeBlock = copyButton.closest('.chat-code-block');
    var codeElement = codeBlock ? codeBlock.querySelector('pre > code') : null;
    var codeText = codeElement ? codeElement.textContent : '';

    navigator.clipboard.writeText(codeText).then(function () {
      var existing = copyButton.dataset.copyTimeoutId;
      if (existing) clearTimeout(Number(existing));

      copyButton.classList.add('is-copied');
      copyButton.dataset.copyTimeoutId = String(setTimeout(function () {
        copyButton.classList.remove('is-copied');
        delete copyButton.dataset.copyTimeoutId;
      }, COPY_FEEDBACK_MS));
    });
  });
})();
</script>`
